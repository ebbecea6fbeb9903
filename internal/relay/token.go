package relay

import (
	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 30 // seconds

// serviceToken mints the short-lived HS256 token each relay request carries.
// The relay is trusted, but requests to it still authenticate so it can
// reject third-party traffic.
func (c *Client) serviceToken() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"iss": "domainlens",
		"aud": "lookup-relay",
		"iat": now.Unix(),
		"exp": now.Unix() + tokenLifetime,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}
