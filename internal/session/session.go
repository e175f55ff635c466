// Package session tracks revoked access tokens so logout and credential
// changes take effect before the tokens expire.
package session

import (
	"context"
	"time"
)

// Revoker records revoked tokens.
type Revoker interface {
	// Revoke invalidates a single token by its JWT ID for ttl, which should be
	// the token's remaining lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether the token with this JWT ID was revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeUser invalidates every token issued to userID before now.
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// IsUserRevoked reports whether a token issued at issuedAt predates the
	// user's last revocation.
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// cutoff truncates to the one-second precision of the JWT iat claim, so a
// token issued in the same second as the revocation stays valid.
func cutoff(t time.Time) time.Time {
	return t.Truncate(time.Second)
}
