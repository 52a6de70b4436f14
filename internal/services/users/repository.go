package users

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store persists user documents.
//
// Token list mutations are single-document atomic updates so that
// concurrent logins and logouts on one user never lose each other's writes.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByToken returns the user with the given id only if token is in its list.
	FindByToken(ctx context.Context, id bson.ObjectID, token string) (*User, error)
	// SaveProfile writes the scalar profile fields of u (not its tokens).
	SaveProfile(ctx context.Context, u *User) error
	AddToken(ctx context.Context, id bson.ObjectID, token string) error
	RemoveToken(ctx context.Context, id bson.ObjectID, token string) error
	ClearTokens(ctx context.Context, id bson.ObjectID) error
	// Delete removes the document and returns it as it was.
	Delete(ctx context.Context, id bson.ObjectID) (*User, error)
}

// Recorder receives session lifecycle events, e.g. for metrics.
type Recorder interface {
	SessionOpened()
	SessionsClosed(n int)
}

type nopRecorder struct{}

func (nopRecorder) SessionOpened()     {}
func (nopRecorder) SessionsClosed(int) {}
