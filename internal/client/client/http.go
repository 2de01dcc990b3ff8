package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/netx"
)

// HTTPClient implements Client against the chat server REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

// NewHTTPClient parses baseURL ("http://host:port") and prepares a client
// whose requests time out after timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, phone string, password []byte) error {
	body := map[string]string{"name": name, "email": email, "phone": phone, "password": string(password)}
	return c.do(ctx, http.MethodPost, "/submit", "", body, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (string, *models.User, error) {
	var res struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/login", "", map[string]string{"email": email, "password": string(password)}, &res)
	if errors.Is(err, ErrUnauthorized) {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err != nil {
		return "", nil, err
	}
	return res.Token, res.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (c *HTTPClient) Users(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/getuser", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) History(ctx context.Context, userID, peerID string) ([]models.Message, error) {
	path := "/messages/" + url.PathEscape(userID) + "/" + url.PathEscape(peerID) + "?viewer=" + url.QueryEscape(userID)
	var msgs []models.Message
	if err := c.do(ctx, http.MethodGet, path, "", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) AvatarUploadURL(ctx context.Context, token string) (string, string, error) {
	var res struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/avatar", token, nil, &res); err != nil {
		return "", "", err
	}
	return res.Key, res.URL, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, url string, data []byte, contentType string) error {
	if err := netx.UploadToPresignedURL(ctx, c.http, url, data, contentType); err != nil {
		return fmt.Errorf("avatar upload: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps an HTTP failure to a sentinel and keeps the server's text.
func statusError(resp *http.Response) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrAlreadyExists
	default:
		sentinel = ErrServer
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	text := strings.TrimSpace(string(raw))

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		switch {
		case parsed.Error != "":
			text = parsed.Error
		case parsed.Message != "":
			text = parsed.Message
		}
	}
	if text == "" {
		text = resp.Status
	}
	return fmt.Errorf("%w: %s", sentinel, text)
}
