package views

import (
	"context"

	"github.com/AdamBeresnev/tourney-predictor/internal/middleware"
	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}
