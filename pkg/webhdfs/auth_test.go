package webhdfs

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

// makeToken builds an unsigned JWT carrying only an exp claim. The
// client never verifies signatures, so an empty one is enough.
func makeToken(exp time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))
	return header + "." + payload + "."
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := TokenExpiry(makeToken(exp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}

func TestTokenExpiry_NoClaim(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{}`))
	if _, err := TokenExpiry(header + "." + payload + "."); err == nil {
		t.Fatal("expected error for a token without exp")
	}
}

func TestTokenExpiry_Malformed(t *testing.T) {
	if _, err := TokenExpiry("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestSessionIsExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(time.Minute)}
	if s.IsExpired(0) {
		t.Error("session should not be expired yet")
	}
	if !s.IsExpired(5 * time.Minute) {
		t.Error("session should be expired within the margin")
	}

	unknown := &Session{}
	if unknown.IsExpired(time.Hour) {
		t.Error("a session without expiry never expires")
	}
}

func TestFetchToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := makeToken(exp)

	var gotUser, gotPass string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer"}`, token)
	}))
	defer ts.Close()

	u, _ := url.Parse(ts.URL)
	port, _ := strconv.Atoi(u.Port())
	c := New(Config{
		Host: u.Hostname(),
		Port: port,
		Auth: &Credentials{User: "admin", Pass: "secret"},
	})

	session, err := c.FetchToken(context.Background(), ts.URL+"/knoxtoken/api/v1/token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "admin" || gotPass != "secret" {
		t.Errorf("expected basic auth admin/secret, got %s/%s", gotUser, gotPass)
	}
	if session.Token != token {
		t.Error("session token mismatch")
	}
	if !session.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, session.ExpiresAt)
	}
	if c.Session() != session {
		t.Error("session was not installed on the client")
	}
}

func TestFetchToken_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "bad credentials")
	}))
	defer ts.Close()

	u, _ := url.Parse(ts.URL)
	port, _ := strconv.Atoi(u.Port())
	c := New(Config{Host: u.Hostname(), Port: port})

	if _, err := c.FetchToken(context.Background(), ts.URL+"/token"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if c.Session() != nil {
		t.Error("no session should be installed after a rejected fetch")
	}
}
