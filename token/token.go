package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRefreshWindow is how long before expiry a token is considered due
// for refresh. The window exists so a refresh can complete before the access
// token actually expires; without it an in-flight request can be rejected
// mid-flight with a token that was valid when the request started.
const DefaultRefreshWindow = 5 * time.Minute

// Codec reads the expiry claim out of a bearer token without verifying its
// signature. Signature custody belongs to the issuing server; the client
// only needs to know when the token runs out.
//
// All methods treat malformed input as a negative result, never an error:
// an unparsable token is simply invalid / due for refresh.
type Codec struct {
	refreshWindow time.Duration

	// now is overridable in tests.
	now func() time.Time
}

// NewCodec returns a Codec with the given pre-emptive refresh window.
// A window <= 0 falls back to DefaultRefreshWindow.
func NewCodec(refreshWindow time.Duration) *Codec {
	if refreshWindow <= 0 {
		refreshWindow = DefaultRefreshWindow
	}
	return &Codec{
		refreshWindow: refreshWindow,
		now:           time.Now,
	}
}

// Expiration returns the token's expiry time. ok is false when the token is
// empty, is not three dot-separated segments, the claims segment is not
// base64url JSON, or no exp claim is present.
func (c *Codec) Expiration(token string) (time.Time, bool) {
	exp, ok := parseExpiry(token)
	if !ok {
		return time.Time{}, false
	}
	return exp, true
}

// ExpirationUnixMilli is Expiration in epoch milliseconds.
func (c *Codec) ExpirationUnixMilli(token string) (int64, bool) {
	exp, ok := parseExpiry(token)
	if !ok {
		return 0, false
	}
	return exp.UnixMilli(), true
}

// IsValid reports whether the token carries an expiry claim that is still in
// the future. Empty and malformed tokens are invalid, not errors.
func (c *Codec) IsValid(token string) bool {
	exp, ok := parseExpiry(token)
	if !ok {
		return false
	}
	return exp.After(c.now())
}

// ShouldRefresh reports whether a refresh is due: the token is empty, its
// expiry cannot be determined, or expiry falls inside the refresh window
// (now + window >= exp, boundary inclusive). Unknown always means refresh.
func (c *Codec) ShouldRefresh(token string) bool {
	exp, ok := parseExpiry(token)
	if !ok {
		return true
	}
	return !exp.After(c.now().Add(c.refreshWindow))
}

// parseExpiry decodes the claims segment and extracts exp. golang-jwt's
// unverified parse enforces the three-segment shape and base64url JSON for
// us; any failure collapses to ok=false.
func parseExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

var defaultCodec = NewCodec(DefaultRefreshWindow)

// IsValid is Codec.IsValid on a codec with the default refresh window.
func IsValid(token string) bool {
	return defaultCodec.IsValid(token)
}

// Expiration is Codec.Expiration on a codec with the default refresh window.
func Expiration(token string) (time.Time, bool) {
	return defaultCodec.Expiration(token)
}

// ShouldRefresh is Codec.ShouldRefresh on a codec with the default refresh
// window.
func ShouldRefresh(token string) bool {
	return defaultCodec.ShouldRefresh(token)
}
