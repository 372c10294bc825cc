package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	users "github.com/AdamBeresnev/tourney-predictor/internal/user"
	"github.com/stretchr/testify/assert"
)

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequireAuth(ok)

	tests := []struct {
		name         string
		path         string
		htmx         bool
		loggedIn     bool
		wantStatus   int
		wantLocation string
		wantHX       string
	}{
		{name: "logged in", path: "/", loggedIn: true, wantStatus: http.StatusTeapot},
		{name: "page", path: "/tournaments/create", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "api", path: "/api/tournaments", wantStatus: http.StatusUnauthorized},
		{name: "htmx", path: "/games/1/guess", htmx: true, wantStatus: http.StatusUnauthorized, wantHX: "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			if tt.loggedIn {
				req = req.WithContext(context.WithValue(req.Context(), UserIDKey, users.GuestID))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantHX, rec.Header().Get("HX-Redirect"))
		})
	}
}

func TestGetAuthenticatedUser(t *testing.T) {
	assert.Nil(t, GetAuthenticatedUser(context.Background()))

	user := &users.User{ID: users.GuestID, Username: "Guest User"}
	ctx := context.WithValue(context.Background(), users.UserKey, user)
	assert.Same(t, user, GetAuthenticatedUser(ctx))

	id, found := GetUserIDFromContext(context.WithValue(context.Background(), UserIDKey, users.GuestID))
	assert.True(t, found)
	assert.Equal(t, users.GuestID, id)
}
