package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"user-pulse/internal/config"
	"user-pulse/internal/utils/crypto"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles account and session business logic
type Service struct {
	store      Store
	tokens     *TokenIssuer
	bcryptCost int
	rec        Recorder
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a new users service. rec may be nil.
func NewService(store Store, cfg config.Config, rec Recorder, log *slog.Logger) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{
		store:      store,
		tokens:     NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute),
		bcryptCost: cfg.BcryptCost,
		rec:        rec,
		log:        log,
		now:        time.Now,
	}
}

// SignUp creates a user and opens its first session.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	name, err := trimName(req.Name)
	if err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return nil, ErrHashPassword
	}

	now := s.now().UTC()
	user := &User{
		ID:           bson.NewObjectID(),
		Name:         name,
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
		Age:          copyPtr(req.Age),
		Mobile:       copyPtr(req.Mobile),
		Gender:       copyPtr(req.Gender),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.DOB != nil {
		dob, err := ParseDate(*req.DOB)
		if err != nil {
			return nil, fmt.Errorf("%w: dob: %s", ErrInvalidValue, err.Error())
		}
		user.DOB = &dob
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("failed to issue token", "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenToken
	}
	user.Tokens = []SessionToken{{Token: token}}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		s.log.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.rec.SessionOpened()
	s.log.Debug("user signed up", "user_id", user.ID.Hex())

	return &AuthResponse{User: user, Token: token}, nil
}

// Login checks credentials and appends a new session token to the user.
// Any failure to match returns ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.FindByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("failed to issue token", "error", err, "user_id", user.ID.Hex())
		return nil, ErrGenToken
	}

	if err := s.store.AddToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	user.Tokens = append(user.Tokens, SessionToken{Token: token})

	s.rec.SessionOpened()

	return &AuthResponse{User: user, Token: token}, nil
}

// ResolveSession returns the session for a verified token, provided the
// token is still in the user's token list.
func (s *Service) ResolveSession(ctx context.Context, userID bson.ObjectID, raw string) (*Session, error) {
	user, err := s.store.FindByToken(ctx, userID, raw)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &Session{User: user, Token: raw}, nil
}

// Logout removes the session's own token from its user.
func (s *Service) Logout(ctx context.Context, sess Session) error {
	if err := s.store.RemoveToken(ctx, sess.User.ID, sess.Token); err != nil {
		return fmt.Errorf("failed to remove session token: %w", err)
	}

	kept := sess.User.Tokens[:0]
	for _, t := range sess.User.Tokens {
		if t.Token != sess.Token {
			kept = append(kept, t)
		}
	}
	sess.User.Tokens = kept

	s.rec.SessionsClosed(1)
	return nil
}

// LogoutAll drops every session of the user.
func (s *Service) LogoutAll(ctx context.Context, sess Session) error {
	if err := s.store.ClearTokens(ctx, sess.User.ID); err != nil {
		return fmt.Errorf("failed to clear session tokens: %w", err)
	}

	closed := len(sess.User.Tokens)
	sess.User.Tokens = []SessionToken{}

	s.rec.SessionsClosed(closed)
	return nil
}

// Get looks a user up by its hex id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}
	return s.store.FindByID(ctx, oid)
}

// Update applies upd to the session user and saves the profile. The
// session user is only modified once the save succeeded.
func (s *Service) Update(ctx context.Context, sess Session, upd *Update) (*User, error) {
	updated := *sess.User
	if err := upd.apply(&updated, s.hashPassword); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now().UTC()

	if err := s.store.SaveProfile(ctx, &updated); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	*sess.User = updated
	return sess.User, nil
}

// Delete removes the session user and returns the removed document.
func (s *Service) Delete(ctx context.Context, sess Session) (*User, error) {
	removed, err := s.store.Delete(ctx, sess.User.ID)
	if err != nil {
		return nil, err
	}

	s.rec.SessionsClosed(len(removed.Tokens))
	s.log.Info("user deleted", "user_id", removed.ID.Hex())

	return removed, nil
}

func (s *Service) hashPassword(plain string) (string, error) {
	hash, err := crypto.HashPassword(plain, s.bcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return "", ErrHashPassword
	}
	return hash, nil
}
