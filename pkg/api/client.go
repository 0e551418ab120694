package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenStore is the durable slot holding the bearer token. The client
// reads it on every dispatch and clears it on 401; the session writes it
// on login and logout.
type TokenStore interface {
	// Token returns the stored token and whether one is present.
	Token() (string, bool)
	// Save persists a new token, replacing any previous one.
	Save(token string) error
	// Clear removes the stored token.
	Clear() error
}

// Options configures a Client. BaseURL and Tokens are required.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenStore
	Logger  *zap.Logger
}

// Client is the process-wide authenticated request pipeline. It is
// immutable after construction apart from the unauthorized hook.
//
// Facades are exposed as fields so call sites read as
// client.Patients.List(ctx, params).
type Client struct {
	http   *resty.Client
	tokens TokenStore
	logger *zap.Logger

	onUnauthorized func()

	Patients  *PatientsService
	Alerts    *AlertsService
	Admin     *AdminService
	Settings  *SettingsService
	Auth      *AuthService
	Dashboard *DashboardService
	Health    *HealthService
}

// New builds a Client bound to one base URL.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		tokens: opts.Tokens,
		logger: logger,
	}

	c.http = resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	// Outbound decoration: the token is read from the store at dispatch
	// time, so the Authorization header is present iff a token exists.
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.tokens != nil {
			if token, ok := c.tokens.Token(); ok {
				req.SetHeader("Authorization", "Bearer "+token)
			}
		}
		req.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	// 401 policy: the session is over. Clear the persisted token before
	// the caller ever sees the rejection, then let the hook redirect.
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized {
			if c.tokens != nil {
				if err := c.tokens.Clear(); err != nil {
					c.logger.Warn("failed to clear token after 401", zap.Error(err))
				}
			}
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		return nil
	})

	c.Patients = &PatientsService{c: c}
	c.Alerts = &AlertsService{c: c}
	c.Admin = &AdminService{c: c}
	c.Settings = &SettingsService{c: c}
	c.Auth = &AuthService{c: c}
	c.Dashboard = &DashboardService{c: c}
	c.Health = &HealthService{c: c}
	return c
}

// OnUnauthorized registers the callback invoked once per 401 response,
// after the token has been cleared. The session uses it to navigate the
// user back to the login route.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the URL the client was bound to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Envelope is the uniform response wrapper every operation resolves to.
type Envelope[T any] struct {
	Data   T
	Status int
}

// request carries everything a single exchange needs.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	form   map[string]string
}

// do executes one exchange and decodes the body into T. It is a
// package-level generic because Go methods cannot take type parameters.
func do[T any](ctx context.Context, c *Client, r request) (*Envelope[T], error) {
	req := c.http.R().SetContext(ctx)
	if r.query != nil {
		req.SetQueryParamsFromValues(r.query)
	}
	if r.form != nil {
		// resty switches the content type to x-www-form-urlencoded
		req.SetFormData(r.form)
	} else if r.body != nil {
		req.SetBody(r.body)
	}

	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, &Error{Message: GenericErrorMessage}
	}

	if resp.IsError() {
		return nil, parseError(resp)
	}

	var data T
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &data); err != nil {
			return nil, &Error{Status: resp.StatusCode(), Message: "malformed response body"}
		}
	}
	return &Envelope[T]{Data: data, Status: resp.StatusCode()}, nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*Envelope[T], error) {
	return do[T](ctx, c, request{method: http.MethodGet, path: path, query: query})
}

func post[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return do[T](ctx, c, request{method: http.MethodPost, path: path, body: body})
}

func postForm[T any](ctx context.Context, c *Client, path string, form map[string]string) (*Envelope[T], error) {
	return do[T](ctx, c, request{method: http.MethodPost, path: path, form: form})
}

func put[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return do[T](ctx, c, request{method: http.MethodPut, path: path, body: body})
}

func patch[T any](ctx context.Context, c *Client, path string, body any) (*Envelope[T], error) {
	return do[T](ctx, c, request{method: http.MethodPatch, path: path, body: body})
}

// parseError turns a non-2xx response into a typed *Error, keeping the
// server's "detail" or "message" field when one was sent.
func parseError(resp *resty.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode()}
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		ErrMsg  string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Detail = body.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = body.ErrMsg
		}
		apiErr.Message = body.Message
	}
	return apiErr
}
