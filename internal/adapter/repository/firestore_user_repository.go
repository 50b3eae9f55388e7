package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := r.client.Collection(repository.CollectionUsers).Doc(user.ID).Create(ctx, user)
	if err != nil {
		return errors.FromStore(err, "User already exists")
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return getDoc[entity.User](ctx, r.client.Collection(repository.CollectionUsers).Doc(id), "User")
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := r.client.Collection(repository.CollectionUsers).Where("email", "==", strings.ToLower(email)).Limit(1)
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("User", nil)
		}
		return nil, errors.FromStore(err, "Failed to query user")
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	logger.Debug("Updating user %s", user.ID)

	user.UpdatedAt = time.Now()
	updates := []firestore.Update{
		{Path: "displayName", Value: user.DisplayName},
		{Path: "photoURL", Value: user.PhotoURL},
		{Path: "phone", Value: user.Phone},
		{Path: "bio", Value: user.Bio},
		{Path: "location", Value: user.Location},
		{Path: "role", Value: user.Role},
		{Path: "status", Value: user.Status},
		{Path: "updatedAt", Value: user.UpdatedAt},
	}

	_, err := r.client.Collection(repository.CollectionUsers).Doc(user.ID).Update(ctx, updates)
	if err != nil {
		return errors.FromStore(err, "User not found")
	}
	return nil
}
