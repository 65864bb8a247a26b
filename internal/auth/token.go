package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired indicates the configured session token is past its expiry.
var ErrTokenExpired = errors.New("session token expired, sign in again")

// expirySlack avoids sending a request with a token about to expire in
// transit.
const expirySlack = 30 * time.Second

// CheckToken inspects a bearer token before it is attached to a request.
//
// The token is issued and verified by the auth service; this client holds no
// signing key, so only the structure and the exp claim are checked. The point
// is to fail fast with a clear message instead of a round trip that ends in a
// 401.
func CheckToken(tokenStr string, now time.Time) error {
	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return fmt.Errorf("malformed session token: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now.Add(expirySlack)) {
		return ErrTokenExpired
	}
	return nil
}
