package credstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from an access token without verifying it.
// Opaque is true when the token is not a JWT.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Opaque    bool
}

// Expired reports whether the token carries an expiry that is before now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && i.ExpiresAt.Before(now)
}

// InspectToken decodes the registered claims of raw. The signature is not
// checked: the server is the only party that can validate it, and the result
// is only used for display.
func InspectToken(raw string) TokenInfo {
	var claims jwt.RegisteredClaims

	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return TokenInfo{Opaque: true}
	}

	info := TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}

	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}

	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info
}
