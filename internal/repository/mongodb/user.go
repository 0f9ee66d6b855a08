package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) user.UserRepository {
	return &userRepository{collection: db.Collection(UserCollection)}
}

func (r *userRepository) findOne(ctx context.Context, op string, filter bson.M, opts ...*options.FindOneOptions) (userDocument, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return userDocument{}, user.ErrUserNotFound
		}
		return userDocument{}, database.Wrap(op, err)
	}
	return doc, nil
}

// GetByID implements user.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrUserNotFound
	}
	doc, err := r.findOne(ctx, "get user by id", bson.M{"_id": oid})
	if err != nil {
		return user.User{}, err
	}
	return doc.toDomain(), nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	doc, err := r.findOne(ctx, "get user by email", bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return user.User{}, err
	}
	return doc.toDomain(), nil
}

// GetAccessProfile implements user.UserRepository.
func (r *userRepository) GetAccessProfile(ctx context.Context, id string) (user.AccessProfile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.AccessProfile{}, user.ErrUserNotFound
	}

	projection := options.FindOne().SetProjection(bson.M{"email": 1, "roles": 1, "is_active": 1})
	doc, err := r.findOne(ctx, "get access profile", bson.M{"_id": oid}, projection)
	if err != nil {
		return user.AccessProfile{}, err
	}

	return user.AccessProfile{
		ID:       doc.ID.Hex(),
		Email:    doc.Email,
		Roles:    doc.Roles,
		IsActive: doc.IsActive,
	}, nil
}

// Create implements user.UserRepository.
func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	newUser.Roles = user.NormalizeRoles(newUser.Roles)
	if newUser.CreatedAt.IsZero() {
		newUser.CreatedAt = time.Now().UTC()
		newUser.UpdatedAt = newUser.CreatedAt
	}

	doc := userDocument{
		Name:         newUser.Name,
		Email:        newUser.Email,
		PasswordHash: newUser.PasswordHash,
		Roles:        newUser.Roles,
		Department:   newUser.Department,
		JobTitle:     newUser.JobTitle,
		IsActive:     newUser.IsActive,
		CreatedAt:    newUser.CreatedAt.UTC(),
		UpdatedAt:    newUser.UpdatedAt.UTC(),
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, database.Wrap("insert user", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		newUser.ID = oid.Hex()
	}
	return newUser, nil
}
