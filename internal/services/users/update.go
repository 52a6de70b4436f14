package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"user-pulse/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field names a user attribute that PATCH /users/me may change.
type Field string

// Updatable fields. Anything else in an update body is rejected.
const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldAge      Field = "age"
	FieldDOB      Field = "dob"
	FieldMobile   Field = "mobile"
	FieldGender   Field = "gender"
)

// UpdatableFields lists the allow-list in application order.
var UpdatableFields = []Field{
	FieldName,
	FieldEmail,
	FieldPassword,
	FieldAge,
	FieldDOB,
	FieldMobile,
	FieldGender,
}

// ParseField maps a JSON key to its Field.
func ParseField(key string) (Field, bool) {
	for _, f := range UpdatableFields {
		if string(f) == key {
			return f, true
		}
	}
	return "", false
}

// Update is a decoded partial update of a user's profile.
// Only the fields listed in Fields are applied; a nil optional value clears it.
type Update struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=100" example:"Jane Roe"`
	Email    *string `json:"email" validate:"omitempty,email" example:"jane.roe@example.com"`
	Password *string `json:"password" validate:"omitempty,password" example:"N3wSecret"`
	Age      *int    `json:"age" validate:"omitempty,min=0,max=150" example:"32"`
	DOB      *string `json:"dob" validate:"omitempty,date" example:"1994-03-17"`
	Mobile   *string `json:"mobile" validate:"omitempty,min=5,max=20" example:"+15557654321"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female other" example:"other"`

	fields []Field
}

// Fields returns the fields present in the update, in UpdatableFields order.
func (u *Update) Fields() []Field {
	return u.fields
}

// ParseUpdate decodes a PATCH body. Every key must be an updatable field,
// otherwise ErrInvalidOperation is returned and nothing is decoded.
func ParseUpdate(body []byte) (*Update, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &Update{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidValue)
	}

	present := make(map[Field]bool, len(raw))
	for key := range raw {
		f, ok := ParseField(key)
		if !ok {
			return nil, ErrInvalidOperation
		}
		present[f] = true
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, err.Error())
	}

	for _, f := range UpdatableFields {
		if present[f] {
			upd.fields = append(upd.fields, f)
		}
	}

	for _, f := range upd.fields {
		switch f {
		case FieldName:
			if upd.Name == nil {
				return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidValue, f)
			}
		case FieldEmail:
			if upd.Email == nil {
				return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidValue, f)
			}
		case FieldPassword:
			if upd.Password == nil {
				return nil, fmt.Errorf("%w: %s cannot be null", ErrInvalidValue, f)
			}
		case FieldAge, FieldDOB, FieldMobile, FieldGender:
			// null clears an optional field
		}
	}

	return &upd, nil
}

// apply writes the update onto user. hash turns a plain password into its stored form.
func (u *Update) apply(user *User, hash func(string) (string, error)) error {
	for _, f := range u.fields {
		switch f {
		case FieldName:
			name, err := trimName(*u.Name)
			if err != nil {
				return err
			}
			user.Name = name
		case FieldEmail:
			user.Email = NormalizeEmail(*u.Email)
		case FieldPassword:
			h, err := hash(*u.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = h
		case FieldAge:
			user.Age = copyPtr(u.Age)
		case FieldDOB:
			if u.DOB == nil {
				user.DOB = nil
				continue
			}
			d, err := ParseDate(*u.DOB)
			if err != nil {
				return fmt.Errorf("%w: dob: %s", ErrInvalidValue, err.Error())
			}
			user.DOB = &d
		case FieldMobile:
			user.Mobile = copyPtr(u.Mobile)
		case FieldGender:
			user.Gender = copyPtr(u.Gender)
		}
	}
	return nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// trimName returns name without surrounding whitespace. A blank name is rejected.
func trimName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be blank", ErrInvalidValue)
	}
	return name, nil
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	return t.UTC(), nil
}

func dateRule(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// RegisterValidators adds the "date", "notblank" and "password" tags used by the request types.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("date", dateRule); err != nil {
		return err
	}
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}
	return crypto.RegisterPasswordValidator(v)
}
