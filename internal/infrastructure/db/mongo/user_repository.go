package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"first_name"`
	LastName  string             `bson:"last_name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone,omitempty"`
	Photo     string             `bson:"photo,omitempty"`
	PhotoKey  string             `bson:"photo_key,omitempty"`

	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	Status       string `bson:"status"`

	EmailVerified bool               `bson:"email_verified"`
	IsOnboarded   bool               `bson:"is_onboarded"`
	Company       *domain.Company    `bson:"company,omitempty"`
	Preferences   domain.Preferences `bson:"preferences"`

	PasswordChangedAt        *time.Time `bson:"password_changed_at,omitempty"`
	PasswordResetToken       string     `bson:"password_reset_token,omitempty"`
	PasswordResetExpires     *time.Time `bson:"password_reset_expires,omitempty"`
	EmailVerificationToken   string     `bson:"email_verification_token,omitempty"`
	EmailVerificationExpires *time.Time `bson:"email_verification_expires,omitempty"`

	LastLogin *time.Time `bson:"last_login,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		FirstName:                u.FirstName,
		LastName:                 u.LastName,
		Email:                    u.Email,
		Phone:                    u.Phone,
		Photo:                    u.Photo,
		PhotoKey:                 u.PhotoKey,
		PasswordHash:             u.PasswordHash,
		Role:                     string(u.Role),
		Status:                   string(u.Status),
		EmailVerified:            u.EmailVerified,
		IsOnboarded:              u.IsOnboarded,
		Company:                  u.Company,
		Preferences:              u.Preferences,
		PasswordChangedAt:        u.PasswordChangedAt,
		PasswordResetToken:       u.PasswordResetTokenHash,
		PasswordResetExpires:     u.PasswordResetExpires,
		EmailVerificationToken:   u.EmailVerificationTokenHash,
		EmailVerificationExpires: u.EmailVerificationExpires,
		LastLogin:                u.LastLogin,
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
}

func (m *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                         m.ID.Hex(),
		FirstName:                  m.FirstName,
		LastName:                   m.LastName,
		Email:                      m.Email,
		Phone:                      m.Phone,
		Photo:                      m.Photo,
		PhotoKey:                   m.PhotoKey,
		PasswordHash:               m.PasswordHash,
		Role:                       domain.Role(m.Role),
		Status:                     domain.AccountStatus(m.Status),
		EmailVerified:              m.EmailVerified,
		IsOnboarded:                m.IsOnboarded,
		Company:                    m.Company,
		Preferences:                m.Preferences,
		PasswordChangedAt:          utcPtr(m.PasswordChangedAt),
		PasswordResetTokenHash:     m.PasswordResetToken,
		PasswordResetExpires:       utcPtr(m.PasswordResetExpires),
		EmailVerificationTokenHash: m.EmailVerificationToken,
		EmailVerificationExpires:   utcPtr(m.EmailVerificationExpires),
		LastLogin:                  utcPtr(m.LastLogin),
		CreatedAt:                  m.CreatedAt.UTC(),
		UpdatedAt:                  m.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %s", domain.ErrInvalidID, id)
	}
	return oid, nil
}

// Create inserts a new user document. A unique index on email turns concurrent
// registrations of the same address into domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// Update writes the profile, role, status and onboarding fields of user.
// Credentials and tokens have dedicated operations and are left untouched.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := parseID(user.ID)
	if err != nil {
		return nil, err
	}

	doc := toMongoUser(user)
	set := bson.M{
		"first_name":     doc.FirstName,
		"last_name":      doc.LastName,
		"email":          doc.Email,
		"phone":          doc.Phone,
		"photo":          doc.Photo,
		"photo_key":      doc.PhotoKey,
		"role":           doc.Role,
		"status":         doc.Status,
		"email_verified": doc.EmailVerified,
		"is_onboarded":   doc.IsOnboarded,
		"company":        doc.Company,
		"preferences":    doc.Preferences,
		"updated_at":     doc.UpdatedAt,
	}

	updated, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"last_login": at}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password_hash":       passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          time.Now().UTC(),
		},
		"$unset": bson.M{"password_reset_token": "", "password_reset_expires": ""},
	})
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	if tokenHash == "" {
		return r.updateByID(ctx, id, bson.M{
			"$unset": bson.M{"password_reset_token": "", "password_reset_expires": ""},
		})
	}
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{"password_reset_token": tokenHash, "password_reset_expires": expires},
	})
}

func (r *UserRepository) ResetPassword(ctx context.Context, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (*domain.User, error) {
	filter := bson.M{
		"password_reset_token":   tokenHash,
		"password_reset_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash":       passwordHash,
			"password_changed_at": changedAt,
			"updated_at":          now,
		},
		"$unset": bson.M{"password_reset_token": "", "password_reset_expires": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *UserRepository) ConsumeEmailVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	filter := bson.M{
		"email_verification_token":   tokenHash,
		"email_verification_expires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"email_verified": true, "updated_at": now},
		"$unset": bson.M{"email_verification_token": "", "email_verification_expires": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// EnsureIndexes creates the indexes the users collection relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "password_reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "email_verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoUser
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
