// Package api is the JSON-over-HTTPS client for the notification platform.
// Responses use the envelope {status, data|message}; unwrap maps that
// envelope onto the error taxonomy (ValidationError, APIError, transport
// failures wrapped with errs.ErrUnavailable). Nothing here retries: a failed
// call surfaces its error and leaves retrying to the user.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	u "github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/shauryatech/notifyctl/internal/errs"
	"github.com/shauryatech/notifyctl/internal/model"
	"github.com/shauryatech/notifyctl/internal/normalize"
)

// Config carries client construction options.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to the platform API. Safe for reuse across calls; the bearer
// token is set once after login.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	token   string
}

// New builds a Client. Timeout defaults to 30s, logging to a nop logger.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []Issue         `json:"errors"`
}

// do issues one request and returns the raw body. Transport failures are
// wrapped with errs.ErrUnavailable so callers can show a generic retry
// message.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body any) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID, _ := u.NewV4()
	req.Header.Set("X-Request-ID", reqID.String())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID.String()),
			zap.Error(err),
		)
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID.String()),
		zap.Int("status", resp.StatusCode),
	)
	return b, resp.StatusCode, nil
}

// unwrap decodes the {status, data|message} envelope and applies the error
// taxonomy.
func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	switch env.Status {
	case "success":
		return env.Data, nil
	case "validation_error":
		return nil, &ValidationError{Issues: env.Errors}
	default:
		return nil, &APIError{Status: env.Status, Message: env.Message}
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token    string
	ClientID string
	User     model.User
}

// Login authenticates with email and password. The user identity comes from
// the JWT payload, decoded without signature verification.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"emailid": email, "password": password}
	b, code, err := c.do(ctx, http.MethodPost, "/users/login", nil, body)
	if err != nil {
		return LoginResult{}, err
	}

	var lr struct {
		Token    string `json:"token"`
		ClientID string `json:"clientId"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(b, &lr); err != nil {
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	if code >= 300 || lr.Token == "" {
		if lr.Message != "" {
			return LoginResult{}, fmt.Errorf("%w: %s", errs.ErrUnauthorized, lr.Message)
		}
		return LoginResult{}, errs.ErrUnauthorized
	}

	user, err := DecodeIdentity(lr.Token)
	if err != nil {
		return LoginResult{}, fmt.Errorf("decode token claims: %w", err)
	}
	return LoginResult{Token: lr.Token, ClientID: lr.ClientID, User: user}, nil
}

// BootstrapProject is the optional project embedded in a registration.
type BootstrapProject struct {
	Name     string `json:"name"`
	SenderID string `json:"sender_id"`
}

// RegisterRequest creates a new client organization.
type RegisterRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	Mobile      string            `json:"mobile"`
	SenderID    string            `json:"sender_id,omitempty"`
	Project     *BootstrapProject `json:"project,omitempty"`
}

// Created reports the server-assigned identifiers after a create call.
type Created struct {
	ClientID  string    `json:"client_id"`
	ProjectID string    `json:"project_id"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a client organization, optionally with a bootstrap
// project.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Created, error) {
	b, _, err := c.do(ctx, http.MethodPost, "/clients", nil, req)
	if err != nil {
		return Created{}, err
	}
	data, err := unwrap(b)
	if err != nil {
		return Created{}, err
	}
	var out Created
	if err := json.Unmarshal(data, &out); err != nil {
		return Created{}, fmt.Errorf("decode register response: %w", err)
	}
	return out, nil
}

// FetchClient returns the full raw client record with nested projects and
// purposes. Normalization happens at the state-store boundary, not here.
func (c *Client) FetchClient(ctx context.Context, clientID string) (normalize.RawClient, error) {
	b, _, err := c.do(ctx, http.MethodGet, "/clients/"+clientID, nil, nil)
	if err != nil {
		return normalize.RawClient{}, err
	}
	data, err := unwrap(b)
	if err != nil {
		return normalize.RawClient{}, err
	}
	var raw normalize.RawClient
	if err := json.Unmarshal(data, &raw); err != nil {
		return normalize.RawClient{}, fmt.Errorf("decode client: %w", err)
	}
	return raw, nil
}

// CreateProjectRequest creates a project under a client. Metadata optionally
// describes enabled channels and channel config (WhatsApp phone-number id,
// access token).
type CreateProjectRequest struct {
	Name     string         `json:"name"`
	ClientID string         `json:"client_id"`
	SenderID string         `json:"sender_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CreateProject provisions a new project and returns its server-assigned
// identifiers.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (Created, error) {
	b, _, err := c.do(ctx, http.MethodPost, "/projects", nil, req)
	if err != nil {
		return Created{}, err
	}
	data, err := unwrap(b)
	if err != nil {
		return Created{}, err
	}
	var out Created
	if err := json.Unmarshal(data, &out); err != nil {
		return Created{}, fmt.Errorf("decode project response: %w", err)
	}
	return out, nil
}

// CreatePurposeRequest creates a message purpose under a project. Meta, when
// set, is JSON-encoded into the wire metadata string.
type CreatePurposeRequest struct {
	ClientID    string
	ProjectID   string
	Name        string
	Description string
	TemplateID  string
	Meta        *model.PurposeMeta
}

// CreatePurpose creates a purpose and returns it in canonical form.
func (c *Client) CreatePurpose(ctx context.Context, req CreatePurposeRequest) (model.Purpose, error) {
	body := map[string]any{
		"client_id":   req.ClientID,
		"project_id":  req.ProjectID,
		"name":        req.Name,
		"description": req.Description,
		"template_id": req.TemplateID,
	}
	if req.Meta != nil {
		enc, err := json.Marshal(req.Meta)
		if err != nil {
			return model.Purpose{}, fmt.Errorf("marshal purpose metadata: %w", err)
		}
		body["metadata"] = string(enc)
	}

	b, _, err := c.do(ctx, http.MethodPost, "/purpose", nil, body)
	if err != nil {
		return model.Purpose{}, err
	}
	data, err := unwrap(b)
	if err != nil {
		return model.Purpose{}, err
	}
	var raw normalize.RawPurpose
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Purpose{}, fmt.Errorf("decode purpose: %w", err)
	}
	return normalize.Purpose(raw), nil
}

// FetchPlans lists the purchasable plans.
func (c *Client) FetchPlans(ctx context.Context) ([]model.Plan, error) {
	b, _, err := c.do(ctx, http.MethodGet, "/plans", nil, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Plans []model.Plan `json:"plans"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	return out.Plans, nil
}

// FetchMemberships lists a client's memberships. The endpoint has returned
// both a bare array and the standard envelope across platform versions, so
// both are accepted.
func (c *Client) FetchMemberships(ctx context.Context, clientID string) ([]model.Membership, error) {
	b, _, err := c.do(ctx, http.MethodGet, "/membership/"+clientID, nil, nil)
	if err != nil {
		return nil, err
	}

	payload := json.RawMessage(bytes.TrimSpace(b))
	if len(payload) > 0 && payload[0] != '[' {
		payload, err = unwrap(b)
		if err != nil {
			return nil, err
		}
	}
	var ms []model.Membership
	if err := json.Unmarshal(payload, &ms); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	return ms, nil
}

// CreateMemberships subscribes the client to the given plans in one call and
// returns the created membership records.
func (c *Client) CreateMemberships(ctx context.Context, clientID string, planIDs []string) ([]model.Membership, error) {
	body := make([]map[string]string, 0, len(planIDs))
	for _, id := range planIDs {
		body = append(body, map[string]string{"client_id": clientID, "plan_id": id})
	}

	b, _, err := c.do(ctx, http.MethodPost, "/membership", nil, body)
	if err != nil {
		return nil, err
	}
	data, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	var ms []model.Membership
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	return ms, nil
}

// SMSRequest is a one-off SMS send. Credentials travel in headers, the
// message in the body.
type SMSRequest struct {
	ClientID  string
	ProjectID string
	APIKey    string
	PurposeID string
	Mobile    string
	Message   string
}

// SendSMS sends one SMS and returns the server's message.
func (c *Client) SendSMS(ctx context.Context, req SMSRequest) (string, error) {
	headers := map[string]string{
		"X-CLIENT-ID":  req.ClientID,
		"X-PROJECT-ID": req.ProjectID,
		"X-API-KEY":    req.APIKey,
		"X-PURPOSE-ID": req.PurposeID,
	}
	body := map[string]string{"mobile": req.Mobile, "message": req.Message}

	b, _, err := c.do(ctx, http.MethodPost, "/sms", headers, body)
	if err != nil {
		return "", err
	}
	return sendOutcome(b)
}

// WhatsAppRequest is a one-off WhatsApp template send. Variables map template
// parameter names to their values.
type WhatsAppRequest struct {
	APIKey    string
	PurposeID string
	Mobile    string
	Variables map[string]string
}

// SendWhatsApp sends one WhatsApp template message and returns the server's
// message.
func (c *Client) SendWhatsApp(ctx context.Context, req WhatsAppRequest) (string, error) {
	headers := map[string]string{
		"X-API-KEY":    req.APIKey,
		"X-PURPOSE-ID": req.PurposeID,
	}
	body := map[string]any{"mobile": req.Mobile, "variables": req.Variables}

	b, _, err := c.do(ctx, http.MethodPost, "/whatsapp", headers, body)
	if err != nil {
		return "", err
	}
	return sendOutcome(b)
}

func sendOutcome(body []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "success" {
		if _, err := unwrap(body); err != nil {
			return "", err
		}
	}
	if env.Message != "" {
		return env.Message, nil
	}
	return "sent", nil
}
