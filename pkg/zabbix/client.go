package zabbix

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

const apiPath = "api_jsonrpc.php"

// ClientConfig contains connection settings for the Zabbix API.
type ClientConfig struct {
	// URL is the Zabbix frontend URL. "/api_jsonrpc.php" is appended when
	// missing.
	URL string

	// User and Password authenticate through user.login.
	User     string
	Password string

	// Token is an API token. Mutually exclusive with User/Password.
	Token string

	// Timeout bounds every HTTP request.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// HTTPClient overrides the HTTP client built from the settings above.
	HTTPClient *http.Client
}

// Client is a Zabbix JSON-RPC API client.
// It is safe for concurrent use once Connect has returned.
type Client struct {
	endpoint string
	cfg      ClientConfig
	http     *http.Client
	logger   *slog.Logger
	nextID   atomic.Int64

	mu        sync.RWMutex
	version   Version
	authToken string
	session   bool
}

// NewClient creates a new API client. It does not contact the server.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("zabbix url cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 - opt-in via config
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		}
	}

	return &Client{
		endpoint: endpointURL(cfg.URL),
		cfg:      cfg,
		http:     httpClient,
		logger:   logger.With("component", "zabbix"),
	}, nil
}

func endpointURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, apiPath) {
		return base
	}
	return base + "/" + apiPath
}

// Connect reads the API version and authenticates. Any failure is returned
// as an *AuthError.
func (c *Client) Connect(ctx context.Context) error {
	raw, err := c.call(ctx, "apiinfo.version", map[string]any{}, false)
	if err != nil {
		return &AuthError{URL: c.endpoint, Cause: err}
	}

	version, err := ParseVersion(raw.String())
	if err != nil {
		return &AuthError{URL: c.endpoint, Cause: err}
	}

	c.mu.Lock()
	c.version = version
	c.mu.Unlock()

	if c.cfg.Token != "" {
		c.mu.Lock()
		c.authToken = c.cfg.Token
		c.mu.Unlock()
		c.logger.Debug("using api token authentication", "version", version.String())
		return nil
	}

	// Zabbix 5.4 renamed the login parameter "user" to "username".
	userField := "username"
	if version.Before(5, 4) {
		userField = "user"
	}
	result, err := c.call(ctx, "user.login", map[string]any{
		userField:  c.cfg.User,
		"password": c.cfg.Password,
	}, false)
	if err != nil {
		return &AuthError{URL: c.endpoint, Cause: err}
	}

	c.mu.Lock()
	c.authToken = result.String()
	c.session = true
	c.mu.Unlock()

	c.logger.Debug("logged in", "user", c.cfg.User, "version", version.String())
	return nil
}

// Version returns the API version read by Connect.
func (c *Client) Version() Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ListObjects lists objects of type t, requesting only the identity fields.
// A limit of zero lists every object.
func (c *Client) ListObjects(ctx context.Context, t ObjectType, limit int) ([]ObjectRef, error) {
	spec, ok := t.Spec()
	if !ok {
		return nil, fmt.Errorf("unsupported object type %q", t)
	}

	params := map[string]any{
		"output": []string{spec.IDField, "name"},
	}
	if limit > 0 {
		params["limit"] = limit
	}

	method := spec.Method + ".get"
	result, err := c.call(ctx, method, params, true)
	if err != nil {
		return nil, err
	}
	if !result.IsArray() {
		return nil, &ProcessingError{Method: method, Cause: fmt.Errorf("expected array result, got %s", result.Type)}
	}

	items := result.Array()
	refs := make([]ObjectRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, ObjectRef{
			ID:   item.Get(spec.IDField).String(),
			Name: item.Get("name").String(),
		})
	}
	return refs, nil
}

// ExportObject exports a single object and returns its serialized payload.
func (c *Client) ExportObject(ctx context.Context, t ObjectType, id string, format ExportFormat) (string, error) {
	spec, ok := t.Spec()
	if !ok {
		return "", fmt.Errorf("unsupported object type %q", t)
	}

	params := map[string]any{
		"options": map[string]any{
			spec.ExportField: []string{id},
		},
		"format":      string(format),
		"prettyprint": true,
	}

	result, err := c.call(ctx, "configuration.export", params, true)
	if err != nil {
		return "", err
	}
	if result.Type != gjson.String {
		return "", &ProcessingError{Method: "configuration.export", Cause: fmt.Errorf("expected string result, got %s", result.Type)}
	}
	return result.String(), nil
}

// Logout ends a user.login session. It is a no-op for API token auth.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if !session {
		return nil
	}

	if _, err := c.call(ctx, "user.logout", []any{}, true); err != nil {
		return err
	}

	c.mu.Lock()
	c.authToken = ""
	c.session = false
	c.mu.Unlock()
	return nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

// call performs one JSON-RPC request and returns the "result" member.
func (c *Client) call(ctx context.Context, method string, params any, authenticated bool) (gjson.Result, error) {
	c.mu.RLock()
	token := c.authToken
	version := c.version
	c.mu.RUnlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	headers := map[string]string{
		"Content-Type": "application/json-rpc",
	}
	if authenticated && token != "" {
		// Zabbix 6.4 moved authentication to the Authorization header; 7.2
		// dropped the "auth" request member entirely.
		if version.Before(6, 4) {
			req.Auth = token
		} else {
			headers["Authorization"] = "Bearer " + token
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: fmt.Errorf("failed to encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	c.logger.Debug("sending api request", "method", method, "id", req.ID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)}
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: errors.New("response is not valid JSON")}
	}

	if rpcErr := gjson.GetBytes(data, "error"); rpcErr.Exists() {
		return gjson.Result{}, &RequestError{
			Method:  method,
			Code:    rpcErr.Get("code").Int(),
			Message: rpcErr.Get("message").String(),
			Data:    rpcErr.Get("data").String(),
		}
	}

	result := gjson.GetBytes(data, "result")
	if !result.Exists() {
		return gjson.Result{}, &ProcessingError{Method: method, Cause: errors.New("response has neither result nor error")}
	}
	return result, nil
}
