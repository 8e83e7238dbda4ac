// go-smartlibrary
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-smartlibrary.
//
// go-smartlibrary is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-smartlibrary is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-smartlibrary; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package firebase writes controller state to a Firebase Realtime Database
// through its REST API
package firebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	smartlibrary "github.com/ZaparooProject/go-smartlibrary"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Google endpoints for password sign-in and token refresh
const (
	DefaultSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"
	DefaultTokenURL  = "https://securetoken.googleapis.com/v1/token"
)

// refreshMargin renews the ID token this long before it expires
const refreshMargin = time.Minute

// Client errors
var (
	ErrOffline = errors.New("not signed in")
	ErrAuth    = errors.New("authentication failed")
	ErrRequest = errors.New("database request failed")
)

// Config configures a Client
type Config struct {
	HTTPClient  *http.Client
	APIKey      string
	DatabaseURL string
	Email       string
	Password    string
	// SignInURL and TokenURL default to Google's endpoints
	SignInURL string
	TokenURL  string
	Timeout   time.Duration
}

// Client is a smartlibrary.Gateway backed by the Realtime Database REST
// API. ID tokens come from an oauth2.TokenSource that signs in with the
// configured email and password and refreshes before expiry.
type Client struct {
	http   *http.Client
	source *identitySource
	tokens atomic.Pointer[oauth2.TokenSource]
	config Config
}

// New creates a client. Call SignIn before writing.
func New(config Config) (*Client, error) {
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: database URL is required", smartlibrary.ErrInvalidConfig)
	}
	if config.SignInURL == "" {
		config.SignInURL = DefaultSignInURL
	}
	if config.TokenURL == "" {
		config.TokenURL = DefaultTokenURL
	}
	config.DatabaseURL = strings.TrimRight(config.DatabaseURL, "/")

	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	c := &Client{config: config, http: client}
	c.source = &identitySource{client: c}
	return c, nil
}

// Online reports whether SignIn succeeded
func (c *Client) Online() bool {
	return c.tokens.Load() != nil
}

// SignIn exchanges the configured email and password for tokens
func (c *Client) SignIn(ctx context.Context) error {
	tok, err := c.source.signIn(ctx)
	if err != nil {
		return err
	}
	c.reuse(tok)
	return nil
}

// reuse installs a caching token source seeded with tok. A nil tok makes
// the next request fetch a fresh token.
func (c *Client) reuse(tok *oauth2.Token) {
	ts := oauth2.ReuseTokenSourceWithExpiry(tok, c.source, refreshMargin)
	c.tokens.Store(&ts)
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// identitySource is an oauth2.TokenSource over the Identity Toolkit. It
// refreshes with the last refresh token and falls back to a password
// sign-in when it has none.
type identitySource struct {
	client       *Client
	refreshToken string
	mu           sync.Mutex
}

// Token returns a fresh ID token as an oauth2 access token
func (s *identitySource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		return s.signIn(context.Background())
	}
	return s.refresh(context.Background(), refreshToken)
}

func (s *identitySource) signIn(ctx context.Context) (*oauth2.Token, error) {
	c := s.client
	body, err := json.Marshal(signInRequest{
		Email:             c.config.Email,
		Password:          c.config.Password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.keyed(c.config.SignInURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res signInResponse
	if err := c.doAuth(req, &res); err != nil {
		return nil, err
	}
	return s.token(res.IDToken, res.RefreshToken, res.ExpiresIn), nil
}

func (s *identitySource) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	c := s.client
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.keyed(c.config.TokenURL),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res refreshResponse
	if err := c.doAuth(req, &res); err != nil {
		return nil, err
	}
	return s.token(res.IDToken, res.RefreshToken, res.ExpiresIn), nil
}

// token records the refresh token and converts an Identity Toolkit answer
func (s *identitySource) token(idToken, refreshToken, expiresIn string) *oauth2.Token {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	s.mu.Lock()
	s.refreshToken = refreshToken
	s.mu.Unlock()
	return &oauth2.Token{
		AccessToken:  idToken,
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Duration(seconds) * time.Second),
	}
}

func (c *Client) keyed(endpoint string) string {
	return endpoint + "?key=" + url.QueryEscape(c.config.APIKey)
}

func (c *Client) doAuth(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
			return fmt.Errorf("%w: %s", ErrAuth, e.Error.Message)
		}
		return fmt.Errorf("%w: HTTP %d", ErrAuth, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response: %w", ErrAuth, err)
	}
	return nil
}

// SetString writes a string at path
func (c *Client) SetString(ctx context.Context, path, value string) error {
	return c.put(ctx, path, value)
}

// SetBool writes a boolean at path
func (c *Client) SetBool(ctx context.Context, path string, value bool) error {
	return c.put(ctx, path, value)
}

// SetInt writes an integer at path
func (c *Client) SetInt(ctx context.Context, path string, value int) error {
	return c.put(ctx, path, value)
}

// put replaces the value at path. A rejected token is dropped and the
// write retried once with a fresh one.
func (c *Client) put(ctx context.Context, path string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}

	status, err := c.putOnce(ctx, path, body)
	if err == nil && status == http.StatusUnauthorized {
		c.reuse(nil)
		status, err = c.putOnce(ctx, path, body)
	}
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: PUT %s: HTTP %d", ErrRequest, path, status)
	}
	return nil
}

func (c *Client) putOnce(ctx context.Context, path string, body []byte) (int, error) {
	ts := c.tokens.Load()
	if ts == nil {
		return 0, ErrOffline
	}
	tok, err := (*ts).Token()
	if err != nil {
		return 0, err
	}
	endpoint := c.config.DatabaseURL + "/" + strings.TrimLeft(path, "/") + ".json?auth=" + url.QueryEscape(tok.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: PUT %s: %w", ErrRequest, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

var (
	_ smartlibrary.Gateway = (*Client)(nil)
	_ oauth2.TokenSource   = (*identitySource)(nil)
)
