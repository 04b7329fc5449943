package identity

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("identity provider not configured")
	ErrNoSession     = errors.New("no identity session in cookies")
	ErrUnauthorized  = errors.New("identity verification rejected")
)

// Identity is a verified subject as asserted by the identity service.
// It is never constructed from local token contents.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client talks to the remote identity service over its REST surface,
// reading and writing the provider's namespaced cookies through a
// CookieStore. Verification is always a server round trip; the token
// is never trusted on the strength of a local decode, since a revoked
// token is still well formed.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	store   CookieStore
}

func NewClient(baseURL, anonKey string, timeout time.Duration, store CookieStore) (*Client, error) {
	if baseURL == "" || anonKey == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		store:   store,
	}, nil
}

// tokenSession is the cookie payload shape the provider's own client
// persists: JSON, base64url encoded, "base64-" prefixed, chunked when
// it exceeds one cookie.
type tokenSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

const sessionEncodingPrefix = "base64-"

func encodeSession(s *tokenSession) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return sessionEncodingPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeSession(value string) (*tokenSession, error) {
	raw := []byte(value)
	if encoded, ok := strings.CutPrefix(value, sessionEncodingPrefix); ok {
		decoded, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode session cookie: %w", err)
		}
		raw = decoded
	}
	var s tokenSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse session cookie: %w", err)
	}
	if s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (c *Client) sessionFromCookies() (*tokenSession, error) {
	value := assembleChunked(c.store.GetAll(), authTokenCookieName(c.baseURL))
	if value == "" {
		return nil, ErrNoSession
	}
	return decodeSession(value)
}

// User verifies the current bearer with the identity service and
// returns the asserted subject. Any non-200 answer means no identity.
func (c *Client) User(ctx context.Context) (*Identity, error) {
	sess, err := c.sessionFromCookies()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity round trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ident); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if ident.ID == "" {
		return nil, ErrUnauthorized
	}
	return &ident, nil
}

// SignInWithPassword exchanges staff credentials for a token set and
// persists it through the cookie store.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity round trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	var grant struct {
		AccessToken  string   `json:"access_token"`
		RefreshToken string   `json:"refresh_token"`
		TokenType    string   `json:"token_type"`
		ExpiresIn    int64    `json:"expires_in"`
		ExpiresAt    int64    `json:"expires_at"`
		User         Identity `json:"user"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&grant); err != nil {
		return nil, fmt.Errorf("decode token grant: %w", err)
	}
	if grant.AccessToken == "" || grant.User.ID == "" {
		return nil, ErrUnauthorized
	}

	expiresAt := grant.ExpiresAt
	if expiresAt == 0 {
		expiresAt = tokenExpiryUnix(grant.AccessToken)
	}
	if expiresAt == 0 && grant.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second).Unix()
	}

	if err := c.persistSession(&tokenSession{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    grant.TokenType,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return nil, err
	}
	return &grant.User, nil
}

// SignOut revokes the session remotely and clears the namespaced
// cookies. Remote revocation failure still clears local state.
func (c *Client) SignOut(ctx context.Context) error {
	var revokeErr error
	if sess, err := c.sessionFromCookies(); err == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
			req.Header.Set("apikey", c.anonKey)
			if resp, doErr := c.http.Do(req); doErr != nil {
				revokeErr = doErr
			} else {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				resp.Body.Close()
			}
		}
	}
	c.clearSessionCookies()
	return revokeErr
}

func (c *Client) persistSession(sess *tokenSession) error {
	encoded, err := encodeSession(sess)
	if err != nil {
		return err
	}
	maxAge := 0
	if sess.ExpiresAt > 0 {
		if remaining := time.Until(time.Unix(sess.ExpiresAt, 0)); remaining > 0 {
			maxAge = int(remaining.Seconds())
		}
	}

	chunks := chunkValue(authTokenCookieName(c.baseURL), encoded)
	writing := make(map[string]struct{}, len(chunks))
	for _, ch := range chunks {
		writing[ch.Name] = struct{}{}
	}

	var sets []SetCookie
	// Stale chunks from a previous longer session must not survive a
	// shorter rewrite; they would corrupt reassembly.
	for _, existing := range c.store.GetAll() {
		if _, keep := writing[existing.Name]; keep {
			continue
		}
		sets = append(sets, SetCookie{Name: existing.Name, Options: CookieOptions{MaxAge: -1}})
	}
	for _, ch := range chunks {
		sets = append(sets, SetCookie{
			Name:    ch.Name,
			Value:   ch.Value,
			Options: CookieOptions{MaxAge: maxAge},
		})
	}
	c.store.SetAll(sets)
	return nil
}

func (c *Client) clearSessionCookies() {
	var sets []SetCookie
	for _, existing := range c.store.GetAll() {
		sets = append(sets, SetCookie{Name: existing.Name, Options: CookieOptions{MaxAge: -1}})
	}
	if len(sets) > 0 {
		c.store.SetAll(sets)
	}
}

// tokenExpiryUnix reads the exp claim without verifying the signature.
// It only sizes the cookie lifetime; authorization always goes through
// the remote verification round trip.
func tokenExpiryUnix(accessToken string) int64 {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}
