// file: model/token.go

package model

import "time"

// GatewayToken is a cached OAuth access token for the e-invoicing gateway.
// Rows are insert-only; the row with the highest ID is the current one.
type GatewayToken struct {
	ID          int64     `json:"id"`
	AccessToken string    `json:"-"` // Never exposed in JSON responses.
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Valid reports whether the token is still usable at now.
func (t *GatewayToken) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && t.ExpiresAt.After(now)
}

// OAuthTokenResponse is the body returned by the gateway's token endpoint,
// covering both the success and the OAuth error shape.
type OAuthTokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Credentials is the client id with its primary and fallback secret.
type Credentials struct {
	ClientID        string
	PrimarySecret   string
	SecondarySecret string
}

// HasFallback reports whether a secondary secret is configured.
func (c Credentials) HasFallback() bool {
	return c.SecondarySecret != ""
}
