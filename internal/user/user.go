package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

// GuestID is the shared account used by the guest login. Migrations seed it.
var GuestID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type User struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Email      string    `db:"email" json:"-"`
	Username   string    `db:"username" json:"username"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
	Provider   *string   `db:"provider" json:"-"`
	ProviderID *string   `db:"provider_id" json:"-"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
}

func (u *User) IsGuest() bool {
	return u.ID == GuestID
}
