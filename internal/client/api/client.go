// Package api is the HTTP client for the vault server. It keeps the token
// pair, attaches the access token to authorized calls and transparently
// refreshes it once when the server reports it expired.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

// User mirrors the server's account representation.
type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry mirrors the server's entry representation.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TokenPair is the access/refresh token pair issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// EntryUpdates lists the fields to change; nil fields are left untouched.
type EntryUpdates struct {
	Title       *string
	Description *string
	Category    *string
}

// Client talks to one vault server. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	// OnTokenRefresh, when set, is called with every new pair so the
	// caller can persist it.
	OnTokenRefresh func(TokenPair)
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens seeds the client with a previously saved pair.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current pair.
func (c *Client) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) storeTokens(pair TokenPair) {
	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	c.mu.Unlock()
	if c.OnTokenRefresh != nil {
		c.OnTokenRefresh(pair)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	}
	return &RequestError{StatusCode: resp.StatusCode, Message: msg}
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// doAuthorized runs an authorized request, refreshing the access token and
// retrying once if the server reports it expired. body may be nil; it is
// kept in memory so the retry can replay it.
func (c *Client) doAuthorized(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	send := func() (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		c.mu.Lock()
		token := c.accessToken
		c.mu.Unlock()
		req.Header.Set("Authorization", "Bearer "+token)
		return c.httpClient.Do(req)
	}

	resp, err := send()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	var body401 errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body401)
	resp.Body.Close()
	if body401.Error != "token expired" {
		return nil, ErrUnauthorized
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	return send()
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	token := c.refreshToken
	c.mu.Unlock()
	if token == "" {
		return ErrSessionExpired
	}

	var pair TokenPair
	err := c.postJSON(ctx, "/api/refresh", map[string]string{"refreshToken": token}, &pair)
	if err != nil {
		return ErrSessionExpired
	}
	c.storeTokens(pair)
	return nil
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	var user User
	err := c.postJSON(ctx, "/api/register", map[string]string{"email": email, "password": password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the issued token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.postJSON(ctx, "/api/login", map[string]string{"email": email, "password": password}, &pair)
	if err != nil {
		return nil, err
	}
	c.storeTokens(pair)
	return &pair, nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.doAuthorized(ctx, http.MethodGet, "/api/me", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func entryForm(fields map[string]string, fileName string, file io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, file); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// CreateEntry creates an entry, optionally with an attachment.
func (c *Client) CreateEntry(ctx context.Context, category, title, description, fileName string, file io.Reader) (*Entry, error) {
	body, contentType, err := entryForm(map[string]string{
		"category":    category,
		"title":       title,
		"description": description,
	}, fileName, file)
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuthorized(ctx, http.MethodPost, "/api/entries", body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns the account's entries in one category, newest first.
func (c *Client) ListEntries(ctx context.Context, category string) ([]Entry, error) {
	resp, err := c.doAuthorized(ctx, http.MethodGet, "/api/entries?category="+category, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var list []Entry
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateEntry changes the given fields and optionally replaces the
// attachment.
func (c *Client) UpdateEntry(ctx context.Context, id string, updates EntryUpdates, fileName string, file io.Reader) (*Entry, error) {
	fields := make(map[string]string)
	if updates.Title != nil {
		fields["title"] = *updates.Title
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Category != nil {
		fields["category"] = *updates.Category
	}

	body, contentType, err := entryForm(fields, fileName, file)
	if err != nil {
		return nil, err
	}

	resp, err := c.doAuthorized(ctx, http.MethodPut, "/api/entries/"+id, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry deletes an entry together with its attachment.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	resp, err := c.doAuthorized(ctx, http.MethodDelete, "/api/entries/"+id, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}
