package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"user-pulse/internal/config"
	"user-pulse/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	testEmail    = "jane@example.com"
	testPassword = "Secret123"
	testSecret   = "super-secret-jwt-key-at-least-32-chars"
)

var testCfg = config.Config{
	BcryptCost:   bcrypt.MinCost,
	JWTSecret:    testSecret,
	JWTAlgorithm: "HS256",
}

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockStore) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockStore) FindByToken(ctx context.Context, id bson.ObjectID, token string) (*User, error) {
	args := m.Called(ctx, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockStore) SaveProfile(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockStore) AddToken(ctx context.Context, id bson.ObjectID, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockStore) RemoveToken(ctx context.Context, id bson.ObjectID, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockStore) ClearTokens(ctx context.Context, id bson.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id bson.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// countingRecorder tallies session events.
type countingRecorder struct {
	opened int
	closed int
}

func (r *countingRecorder) SessionOpened()       { r.opened++ }
func (r *countingRecorder) SessionsClosed(n int) { r.closed += n }

func newTestUser(t *testing.T, tokens ...string) *User {
	t.Helper()
	hash, err := crypto.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	u := &User{
		ID:           bson.NewObjectID(),
		Name:         "Jane",
		Email:        testEmail,
		PasswordHash: hash,
	}
	for _, tok := range tokens {
		u.Tokens = append(u.Tokens, SessionToken{Token: tok})
	}
	return u
}

func TestService_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		req     SignUpRequest
		setup   func(*MockStore)
		wantErr error
	}{
		{
			name: "successful signup",
			req: SignUpRequest{
				Name:     "  Jane  ",
				Email:    "Jane@Example.com ",
				Password: testPassword,
			},
			setup: func(store *MockStore) {
				store.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)
			},
		},
		{
			name: "duplicate email",
			req: SignUpRequest{
				Name:     "Jane",
				Email:    testEmail,
				Password: testPassword,
			},
			setup: func(store *MockStore) {
				store.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).Return(ErrDuplicate)
			},
			wantErr: ErrDuplicate,
		},
		{
			name: "blank name",
			req: SignUpRequest{
				Name:     "   ",
				Email:    testEmail,
				Password: testPassword,
			},
			setup:   func(*MockStore) {},
			wantErr: ErrInvalidValue,
		},
		{
			name: "bad dob",
			req: SignUpRequest{
				Name:     "Jane",
				Email:    testEmail,
				Password: testPassword,
				DOB:      ptr("yesterday"),
			},
			setup:   func(*MockStore) {},
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			tt.setup(store)
			rec := &countingRecorder{}

			svc := NewService(store, testCfg, rec, silentLogger)
			resp, err := svc.SignUp(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				assert.Zero(t, rec.opened)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "jane@example.com", resp.User.Email)
				assert.Equal(t, "Jane", resp.User.Name)
				assert.NotEqual(t, tt.req.Password, resp.User.PasswordHash)
				require.Len(t, resp.User.Tokens, 1)
				assert.Equal(t, resp.Token, resp.User.Tokens[0].Token)
				assert.Equal(t, 1, rec.opened)

				id, err := UserIDFromClaims(verifiedClaims(t, testSecret, resp.Token))
				require.NoError(t, err)
				assert.Equal(t, resp.User.ID, id)
			}

			store.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	t.Run("success appends exactly one token", func(t *testing.T) {
		store := new(MockStore)
		user := newTestUser(t, "existing")
		store.On("FindByEmail", mock.Anything, testEmail).Return(user, nil)
		store.On("AddToken", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

		svc := NewService(store, testCfg, nil, silentLogger)
		resp, err := svc.Login(context.Background(), LoginRequest{Email: " JANE@example.com", Password: testPassword})
		require.NoError(t, err)

		require.Len(t, resp.User.Tokens, 2)
		assert.Equal(t, "existing", resp.User.Tokens[0].Token)
		assert.Equal(t, resp.Token, resp.User.Tokens[1].Token)
		store.AssertExpectations(t)
	})

	t.Run("tokens are distinct across logins", func(t *testing.T) {
		store := new(MockStore)
		user := newTestUser(t)
		store.On("FindByEmail", mock.Anything, testEmail).Return(user, nil)
		store.On("AddToken", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil)

		svc := NewService(store, testCfg, nil, silentLogger)
		first, err := svc.Login(context.Background(), LoginRequest{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		second, err := svc.Login(context.Background(), LoginRequest{Email: testEmail, Password: testPassword})
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
		assert.Len(t, user.Tokens, 2)
	})

	tests := []struct {
		name    string
		setup   func(*MockStore, *User)
		req     LoginRequest
		wantErr error
	}{
		{
			name: "unknown email",
			setup: func(store *MockStore, _ *User) {
				store.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, ErrUserNotFound)
			},
			req:     LoginRequest{Email: "nobody@example.com", Password: testPassword},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(store *MockStore, u *User) {
				store.On("FindByEmail", mock.Anything, testEmail).Return(u, nil)
			},
			req:     LoginRequest{Email: testEmail, Password: "Wrong1234"},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			user := newTestUser(t)
			tt.setup(store, user)

			svc := NewService(store, testCfg, nil, silentLogger)
			resp, err := svc.Login(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			store.AssertNotCalled(t, "AddToken", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("store failure is not masked", func(t *testing.T) {
		store := new(MockStore)
		store.On("FindByEmail", mock.Anything, testEmail).Return(nil, errors.New("connection reset"))

		svc := NewService(store, testCfg, nil, silentLogger)
		_, err := svc.Login(context.Background(), LoginRequest{Email: testEmail, Password: testPassword})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_ResolveSession(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, testCfg, nil, silentLogger)
	user := newTestUser(t, "tok")

	t.Run("active token", func(t *testing.T) {
		store.On("FindByToken", mock.Anything, user.ID, "tok").Return(user, nil).Once()

		sess, err := svc.ResolveSession(context.Background(), user.ID, "tok")
		require.NoError(t, err)
		assert.Same(t, user, sess.User)
		assert.Equal(t, "tok", sess.Token)
	})

	t.Run("revoked token", func(t *testing.T) {
		store.On("FindByToken", mock.Anything, user.ID, "gone").Return(nil, ErrUserNotFound).Once()

		_, err := svc.ResolveSession(context.Background(), user.ID, "gone")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("store failure is not a revocation", func(t *testing.T) {
		store.On("FindByToken", mock.Anything, user.ID, "tok").Return(nil, errors.New("db down")).Once()

		_, err := svc.ResolveSession(context.Background(), user.ID, "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTokenNotFound)
	})

	store.AssertExpectations(t)
}

func TestService_Logout(t *testing.T) {
	store := new(MockStore)
	rec := &countingRecorder{}
	svc := NewService(store, testCfg, rec, silentLogger)
	user := newTestUser(t, "a", "b", "c")

	store.On("RemoveToken", mock.Anything, user.ID, "b").Return(nil)

	require.NoError(t, svc.Logout(context.Background(), Session{User: user, Token: "b"}))
	assert.Equal(t, []SessionToken{{Token: "a"}, {Token: "c"}}, user.Tokens)
	assert.Equal(t, 1, rec.closed)

	t.Run("store failure", func(t *testing.T) {
		store := new(MockStore)
		svc := NewService(store, testCfg, nil, silentLogger)
		user := newTestUser(t, "a")
		store.On("RemoveToken", mock.Anything, user.ID, "a").Return(errors.New("boom"))

		assert.Error(t, svc.Logout(context.Background(), Session{User: user, Token: "a"}))
		assert.Len(t, user.Tokens, 1, "tokens untouched on failure")
	})
}

func TestService_LogoutAll(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		store := new(MockStore)
		rec := &countingRecorder{}
		svc := NewService(store, testCfg, rec, silentLogger)

		toks := make([]string, n)
		for i := range toks {
			toks[i] = bson.NewObjectID().Hex()
		}
		user := newTestUser(t, toks...)
		store.On("ClearTokens", mock.Anything, user.ID).Return(nil)

		require.NoError(t, svc.LogoutAll(context.Background(), Session{User: user}))
		assert.Empty(t, user.Tokens)
		assert.Equal(t, n, rec.closed)
		store.AssertExpectations(t)
	}
}

func TestService_Get(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, testCfg, nil, silentLogger)
	user := newTestUser(t)

	store.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	missing := bson.NewObjectID()
	store.On("FindByID", mock.Anything, missing).Return(nil, ErrUserNotFound)

	got, err := svc.Get(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Same(t, user, got)

	_, err = svc.Get(context.Background(), missing.Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestService_Update(t *testing.T) {
	t.Run("applies allowed fields and rehashes password", func(t *testing.T) {
		store := new(MockStore)
		svc := NewService(store, testCfg, nil, silentLogger)
		user := newTestUser(t, "tok")
		oldHash := user.PasswordHash

		store.On("SaveProfile", mock.Anything, mock.AnythingOfType("*users.User")).Return(nil)

		upd, err := ParseUpdate([]byte(`{"name":"Janet","password":"N3wSecret","age":40,"dob":"1985-02-03"}`))
		require.NoError(t, err)

		got, err := svc.Update(context.Background(), Session{User: user, Token: "tok"}, upd)
		require.NoError(t, err)
		assert.Same(t, user, got)
		assert.Equal(t, "Janet", user.Name)
		assert.Equal(t, 40, *user.Age)
		assert.Equal(t, "1985-02-03", user.DOB.Format("2006-01-02"))
		assert.NotEqual(t, oldHash, user.PasswordHash)
		assert.NoError(t, crypto.CheckPassword("N3wSecret", user.PasswordHash))
		assert.Equal(t, []SessionToken{{Token: "tok"}}, user.Tokens)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		store := new(MockStore)
		svc := NewService(store, testCfg, nil, silentLogger)
		user := newTestUser(t)

		upd, err := ParseUpdate([]byte(`{"name":"  "}`))
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), Session{User: user}, upd)
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, "Jane", user.Name)
		store.AssertNotCalled(t, "SaveProfile", mock.Anything, mock.Anything)
	})

	t.Run("failed save leaves user untouched", func(t *testing.T) {
		store := new(MockStore)
		svc := NewService(store, testCfg, nil, silentLogger)
		user := newTestUser(t)

		store.On("SaveProfile", mock.Anything, mock.AnythingOfType("*users.User")).Return(ErrDuplicate)

		upd, err := ParseUpdate([]byte(`{"email":"taken@example.com"}`))
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), Session{User: user}, upd)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, testEmail, user.Email)
	})
}

func TestService_Delete(t *testing.T) {
	store := new(MockStore)
	rec := &countingRecorder{}
	svc := NewService(store, testCfg, rec, silentLogger)
	user := newTestUser(t, "a", "b")

	store.On("Delete", mock.Anything, user.ID).Return(user, nil).Once()
	removed, err := svc.Delete(context.Background(), Session{User: user, Token: "a"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, removed.ID)
	assert.Equal(t, 2, rec.closed)

	store.On("Delete", mock.Anything, user.ID).Return(nil, ErrUserNotFound).Once()
	_, err = svc.Delete(context.Background(), Session{User: user, Token: "a"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func ptr[T any](v T) *T { return &v }
