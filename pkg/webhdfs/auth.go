package webhdfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds a gateway bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// IsExpired returns true if the token has expired (with optional margin).
func (s *Session) IsExpired(margin time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(s.ExpiresAt)
}

// SetSession attaches a bearer-token session to the client. Subsequent
// requests carry the token instead of basic-auth credentials. A nil
// session reverts to basic auth.
func (c *Client) SetSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Session returns the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// TokenExpiry extracts the expiry claim from a gateway JWT without
// verifying the signature. The gateway signs its own tokens; the
// client only needs the expiry to schedule re-authentication.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}
	return exp.Time, nil
}

// tokenResponse is the gateway's token API response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // epoch millis
}

// FetchToken requests a bearer token from the gateway token endpoint
// using the client's basic-auth credentials and installs it as the
// active session.
func (c *Client) FetchToken(ctx context.Context, tokenURL string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", tokenURL, nil)
	if err != nil {
		return nil, err
	}
	if c.auth != nil {
		req.SetBasicAuth(c.auth.User, c.auth.Pass)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(data))
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}

	session := &Session{Token: result.AccessToken}
	if exp, err := TokenExpiry(result.AccessToken); err == nil {
		session.ExpiresAt = exp
	} else if result.ExpiresIn > 0 {
		session.ExpiresAt = time.UnixMilli(result.ExpiresIn)
	}

	c.SetSession(session)
	return session, nil
}
