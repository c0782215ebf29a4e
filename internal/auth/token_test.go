package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/internal/config"
	"github.com/Alturino/framedarchive/internal/errors"
)

func TestVerifyToken(t *testing.T) {
	cfg := config.Application{SecretKey: "secret", Issuer: "framed-archive"}
	c := context.Background()

	tests := []struct {
		name        string
		token       func() string
		expectedSub string
		expectedErr error
	}{
		{
			name: "given valid token should return claims",
			token: func() string {
				token, err := IssueToken(cfg, "user-1", "a@b.co", time.Now(), time.Hour)
				require.NoError(t, err)
				return token
			},
			expectedSub: "user-1",
		},
		{
			name: "given expired token should return invalid token",
			token: func() string {
				token, err := IssueToken(cfg, "user-1", "a@b.co", time.Now().Add(-2*time.Hour), time.Hour)
				require.NoError(t, err)
				return token
			},
			expectedErr: errors.ErrTokenInvalid,
		},
		{
			name: "given token signed with another secret should return invalid token",
			token: func() string {
				other := cfg
				other.SecretKey = "other"
				token, err := IssueToken(other, "user-1", "a@b.co", time.Now(), time.Hour)
				require.NoError(t, err)
				return token
			},
			expectedErr: errors.ErrTokenInvalid,
		},
		{
			name: "given token without subject should return empty subject",
			token: func() string {
				token, err := IssueToken(cfg, "", "a@b.co", time.Now(), time.Hour)
				require.NoError(t, err)
				return token
			},
			expectedErr: errors.ErrEmptySubject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := VerifyToken(c, cfg, tt.token())
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSub, claims.Subject)
			assert.Equal(t, "a@b.co", claims.Email)
		})
	}
}

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "users:u1", Owner{UserID: "u1", GuestSession: "g1"}.Key())
	assert.Equal(t, "guests:g1", Owner{GuestSession: "g1"}.Key())
	assert.False(t, Owner{}.Valid())
	assert.True(t, Owner{GuestSession: "g1"}.IsGuest())
}
