package store

import (
	"context"
	"testing"

	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/AdamBeresnev/tourney-predictor/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	s := NewUserStore(database)
	ctx := context.Background()

	guest, err := s.GetUser(ctx, users.GuestID)
	require.NoError(t, err)
	assert.True(t, guest.IsGuest())

	u := &users.User{
		ID:         uuid.New(),
		Email:      "erin@example.com",
		Username:   "erin",
		Provider:   utils.Ptr("discord"),
		ProviderID: utils.Ptr("1234"),
		AvatarURL:  utils.Ptr("https://cdn.example.com/a.png"),
	}
	require.NoError(t, s.CreateUser(ctx, u))

	byProvider, err := s.GetUserByProvider(ctx, "discord", "1234")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byProvider.ID)

	u.Username = "erin2"
	u.AvatarURL = utils.Ptr("https://cdn.example.com/b.png")
	require.NoError(t, s.UpdateUserNameAndAvatar(ctx, u))

	updated, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin2", updated.Username)
	assert.Equal(t, "https://cdn.example.com/b.png", *updated.AvatarURL)

	found, err := s.ListUsersByIDs(ctx, []uuid.UUID{u.ID, users.GuestID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "erin2", found[u.ID].Username)

	empty, err := s.ListUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
