package memory

import (
	"context"
	"strings"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/pkg/errors"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.store.update(func() error {
		if _, exists := r.store.users[user.ID]; exists {
			return errors.Conflict("User already exists")
		}
		r.store.users[user.ID] = cloneUser(user)
		return nil
	}, repository.CollectionUsers)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user *entity.User
	r.store.read(func() {
		if u, ok := r.store.users[id]; ok {
			user = cloneUser(u)
		}
	})
	if user == nil {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user *entity.User
	r.store.read(func() {
		for _, u := range r.store.users {
			if strings.EqualFold(u.Email, email) {
				user = cloneUser(u)
				return
			}
		}
	})
	if user == nil {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.store.update(func() error {
		if _, ok := r.store.users[user.ID]; !ok {
			return errors.NotFound("User", nil)
		}
		r.store.users[user.ID] = cloneUser(user)
		return nil
	}, repository.CollectionUsers)
}
