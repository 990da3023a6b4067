package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the raw token is not a decodable
// three-segment compact token.
var ErrMalformed = errors.New("malformed bearer token")

// Claims is the decoded payload of a bearer token. The backend's claim
// set is loose (different login endpoints emit different shapes), so the
// payload is kept as a raw claim map with typed accessors instead of a
// fixed struct.
type Claims struct {
	claims jwt.MapClaims
}

// Decode splits a compact three-segment token and decodes its payload
// segment as base64url JSON. The signature segment is ignored entirely.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithPaddingAllowed())
	parsed, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}

	return &Claims{claims: mc}, nil
}

// ExpiresAt returns the exp claim as a wall-clock time. ok is false when
// the claim is absent or not numeric.
func (c *Claims) ExpiresAt() (time.Time, bool) {
	if c == nil {
		return time.Time{}, false
	}
	nd, err := c.claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// ValidAt reports whether the token is considered usable for this session
// at the given instant. The comparison is strict: the token is valid iff
// now < exp − buffer, so a token whose exp equals now + buffer is already
// on the expired side. A token without a numeric exp claim is never valid.
func (c *Claims) ValidAt(now time.Time, buffer time.Duration) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return false
	}
	return now.Before(exp.Add(-buffer))
}

// Subject returns the sub claim, or "" when absent.
func (c *Claims) Subject() string {
	if c == nil {
		return ""
	}
	sub, err := c.claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// String returns the named claim when it is a string, or "".
func (c *Claims) String(name string) string {
	if c == nil {
		return ""
	}
	s, _ := c.claims[name].(string)
	return s
}

// Value returns the named claim in its raw decoded form.
func (c *Claims) Value(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.claims[name]
	return v, ok
}

// FirstGrantedRole returns the first element of a roles-or-authorities
// array claim, or "" when neither carries a non-empty string.
func (c *Claims) FirstGrantedRole() string {
	if c == nil {
		return ""
	}
	for _, name := range []string{"roles", "authorities"} {
		arr, ok := c.claims[name].([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		if s, ok := arr[0].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
