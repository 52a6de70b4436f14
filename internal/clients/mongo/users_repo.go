package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-pulse/internal/services/users"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersCollection is where user documents live.
const UsersCollection = "users"

// UsersRepo implements users.Store on MongoDB.
type UsersRepo struct {
	collection *mongo.Collection
}

var _ users.Store = (*UsersRepo)(nil)

// NewUsersRepo creates the repository and makes sure its indexes exist.
func NewUsersRepo(parentCtx context.Context, db *mongo.Database) (*UsersRepo, error) {
	collection := db.Collection(UsersCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		// Auth lookups match on _id plus token, this keeps revoked-token checks cheap.
		{
			Keys:    bson.D{{Key: "tokens.token", Value: 1}},
			Options: options.Index().SetName("tokens_token"),
		},
	}

	ctx, cancel := opCtx(parentCtx)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create users indexes: %w", err)
	}

	return &UsersRepo{collection: collection}, nil
}

func translateErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return users.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return users.ErrDuplicate
	default:
		return err
	}
}

// Create inserts a new user document.
func (r *UsersRepo) Create(ctx context.Context, u *users.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	if u.Tokens == nil {
		// $push needs an array, never a null
		u.Tokens = []users.SessionToken{}
	}

	if _, err := r.collection.InsertOne(ctx, u); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *UsersRepo) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var u users.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

// FindByID finds a user by its ObjectID.
func (r *UsersRepo) FindByID(ctx context.Context, id bson.ObjectID) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a user by (normalized) email address.
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByToken finds the user only while token is one of its active sessions.
func (r *UsersRepo) FindByToken(ctx context.Context, id bson.ObjectID, token string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "tokens.token": token})
}

// SaveProfile writes the scalar fields of u. Optional fields that are nil are unset.
func (r *UsersRepo) SaveProfile(ctx context.Context, u *users.User) error {
	set := bson.M{
		"name":       u.Name,
		"email":      u.Email,
		"password":   u.PasswordHash,
		"updated_at": u.UpdatedAt,
	}
	unset := bson.M{}

	optional := map[string]any{
		"age":    u.Age,
		"dob":    u.DOB,
		"mobile": u.Mobile,
		"gender": u.Gender,
	}
	for key, val := range optional {
		if isNilPtr(val) {
			unset[key] = ""
		} else {
			set[key] = val
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	return r.updateOne(ctx, u.ID, update)
}

func isNilPtr(v any) bool {
	switch p := v.(type) {
	case *int:
		return p == nil
	case *string:
		return p == nil
	case *time.Time:
		return p == nil
	default:
		return v == nil
	}
}

// AddToken appends token to the user's session list.
func (r *UsersRepo) AddToken(ctx context.Context, id bson.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"tokens": users.SessionToken{Token: token}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// RemoveToken pulls token from the user's session list; other tokens stay.
func (r *UsersRepo) RemoveToken(ctx context.Context, id bson.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// ClearTokens empties the user's session list.
func (r *UsersRepo) ClearTokens(ctx context.Context, id bson.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"tokens":     bson.A{},
			"updated_at": time.Now().UTC(),
		},
	})
}

func (r *UsersRepo) updateOne(ctx context.Context, id bson.ObjectID, update bson.M) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateErr(err)
	}
	if res.MatchedCount == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

// Delete removes the user and returns the document as it was.
func (r *UsersRepo) Delete(ctx context.Context, id bson.ObjectID) (*users.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var removed users.User
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed); err != nil {
		return nil, translateErr(err)
	}
	return &removed, nil
}
