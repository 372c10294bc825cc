package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tourney-predictor/internal/store"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateUserByProvider(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	userService := NewUserService(database, store.NewUserStore(database))
	ctx := context.Background()

	gothUser := goth.User{
		Provider:  "discord",
		UserID:    "42",
		Email:     "fan@example.com",
		NickName:  "fan",
		AvatarURL: "https://cdn.example.com/1.png",
	}

	created, err := userService.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, "fan", created.Username)

	again, err := userService.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "a returning user is found, not duplicated")

	gothUser.NickName = "superfan"
	gothUser.AvatarURL = ""
	updated, err := userService.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "superfan", updated.Username)
	assert.Nil(t, updated.AvatarURL)

	google, err := userService.FindOrCreateUserByProvider(ctx, goth.User{Provider: "google", UserID: "g-1", Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", google.Username)
}

func TestEnsureGuestUser(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	userService := NewUserService(database, store.NewUserStore(database))

	guest, err := userService.EnsureGuestUser(context.Background())
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())
	assert.Equal(t, users.GuestID, guest.ID)
}
