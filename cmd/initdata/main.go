package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	pass    = flag.String("pass", env("PASSWORD", "Seeded123"), "Password for every seeded user")
	nUsers  = flag.Int("n", envInt("COUNT", 50), "How many users to create")
	logins  = flag.Int("logins", envInt("LOGINS", 2), "Extra logins (sessions) per user")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any) (*http.Response, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seeding %d users (%d extra sessions each) on %s\n", *nUsers, *logins, *baseURL)

	for i := 1; i <= *nUsers; i++ {
		email, err := createUser()
		if err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}
		if err := openSessions(email, *logins); err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}

		if i%10 == 0 || i == *nUsers {
			fmt.Printf("  … %d/%d\n", i, *nUsers)
		}
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – sign up a fake person ----------------------------------------------
func createUser() (string, error) {
	person := gofakeit.Person()
	email := strings.ToLower(fmt.Sprintf("%s.%d@example.com", gofakeit.LetterN(8), gofakeit.Number(1000, 9999)))

	payload := map[string]any{
		"name":     person.FirstName + " " + person.LastName,
		"email":    email,
		"password": *pass,
		"age":      gofakeit.Number(18, 90),
		"dob":      gofakeit.DateRange(time.Now().AddDate(-90, 0, 0), time.Now().AddDate(-18, 0, 0)).Format(time.DateOnly),
		"mobile":   gofakeit.Phone(),
		"gender":   gofakeit.RandomString([]string{"male", "female", "other"}),
	}

	resp, err := postJSON("/users", payload)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("sign-up %s failed (%d): %s", email, resp.StatusCode, must(resp.Body))
	}
	must(resp.Body)
	return email, nil
}

// ----------------------------------------------------------------------------
// Step 2 – log in a few more times --------------------------------------------
func openSessions(email string, n int) error {
	for range n {
		resp, err := postJSON("/users/login", map[string]string{"email": email, "password": *pass})
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("login %s failed (%d): %s", email, resp.StatusCode, must(resp.Body))
		}
		must(resp.Body)
	}
	return nil
}
