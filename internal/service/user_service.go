package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

// Discord fills NickName, Google only Name
func displayName(gothUser goth.User) string {
	if gothUser.NickName != "" {
		return gothUser.NickName
	}
	if gothUser.Name != "" {
		return gothUser.Name
	}
	return gothUser.Email
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		name := displayName(gothUser)
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != name {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			user.Username = name
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   displayName(gothUser),
			Provider:   utils.Ptr(gothUser.Provider),
			ProviderID: utils.Ptr(gothUser.UserID),
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return newUser, nil
	}

	return nil, err
}

// EnsureGuestUser returns the shared guest account, creating it if the seed row is gone.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, users.GuestID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:       users.GuestID,
			Email:    "guest@tourney-predictor.app",
			Username: "Guest User",
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, fmt.Errorf("failed to create guest user: %w", err)
		}
		return guestUser, nil
	}
	return nil, err
}
