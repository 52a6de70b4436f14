package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ClaimUserID is the JWT claim carrying the owner's hex ObjectID.
const ClaimUserID = "_id"

// TokenIssuer mints HS256 session tokens. Verification happens in the
// bearer-auth middleware, which reads the owner via UserIDFromClaims.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret. A zero ttl mints
// tokens without an "exp" claim; they stay valid until removed from the user.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new session token for userID. Every call yields a distinct
// token thanks to the ULID "jti", even within the same second.
func (t *TokenIssuer) Issue(userID bson.ObjectID) (string, error) {
	now := t.now().UTC()
	claims := jwt.MapClaims{
		ClaimUserID: userID.Hex(),
		"jti":       ulid.Make().String(),
		"iat":       now.Unix(),
	}
	if t.ttl > 0 {
		claims["exp"] = now.Add(t.ttl).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenToken, err)
	}
	return signed, nil
}

// UserIDFromClaims extracts the owner id from verified claims.
func UserIDFromClaims(claims jwt.MapClaims) (bson.ObjectID, error) {
	hex, ok := claims[ClaimUserID].(string)
	if !ok || hex == "" {
		return bson.ObjectID{}, fmt.Errorf("%w: missing %s claim", ErrInvalidToken, ClaimUserID)
	}

	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, errors.Join(ErrInvalidToken, err)
	}
	return id, nil
}
