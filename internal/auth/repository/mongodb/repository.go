package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IVYLIFE/Authly/internal/auth/domain"
	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const usersCollection = "users"

// userDocument is the stored shape of a user. The id is the service-assigned
// UUID, kept as a string _id so both stores share one identifier format.
type userDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	PasswordHash   string    `bson:"password"`
	Address        string    `bson:"address"`
	Bio            string    `bson:"bio,omitempty"`
	ProfilePicture string    `bson:"profilePicture,omitempty"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Address:        u.Address,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Address:        d.Address,
		Bio:            d.Bio,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type MongoRepository struct {
	db    *mongo.Database
	users *mongo.Collection
	now   func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		db:    db,
		users: db.Collection(usersCollection),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique email index the duplicate check relies on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *MongoRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now()
	doc := toDocument(user)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return autherror.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, user *domain.User) error {
	now := r.now()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: user.Name},
		{Key: "email", Value: user.Email},
		{Key: "password", Value: user.PasswordHash},
		{Key: "address", Value: user.Address},
		{Key: "bio", Value: user.Bio},
		{Key: "profilePicture", Value: user.ProfilePicture},
		{Key: "updatedAt", Value: now},
	}}}

	res, err := r.users.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return autherror.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return autherror.ErrUserNotFound
	}

	user.UpdatedAt = now
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
