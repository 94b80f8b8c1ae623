package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rxtech-lab/sandbox-risk/internal/history"
	"github.com/rxtech-lab/sandbox-risk/internal/logger"
	"github.com/rxtech-lab/sandbox-risk/internal/version"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
	"go.uber.org/zap"
)

// Headers exchanged with the sandbox backend.
const (
	HeaderRequestID  = "X-Request-Id"
	HeaderAPIVersion = "X-Api-Version"
)

// ClientConfig configures the sandbox HTTP client.
type ClientConfig struct {
	BaseURL    string        `json:"baseUrl" yaml:"baseUrl" jsonschema:"title=Base URL,description=Root URL of the sandbox trading backend" validate:"required,url"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout" jsonschema:"title=Timeout,description=Per request timeout,default=15s" validate:"gt=0"`
	APIVersion string        `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty" jsonschema:"title=API Version,description=Backend API version the client expects; empty disables the check"`
}

// Validate validates the ClientConfig struct.
func (c *ClientConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid sandbox client config", err)
	}

	return nil
}

// TokenSource supplies the bearer token for each request. The client never
// stores or refreshes credentials itself.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// Client talks to the sandbox backend over HTTP. It does not retry.
//
// Once a response advertises an incompatible X-Api-Version, further mutations
// are refused locally until a compatible version is seen again. The mutation
// that revealed the mismatch keeps the result the backend reported.
type Client struct {
	rest       *resty.Client
	tokens     TokenSource
	apiVersion string
	log        *logger.Logger

	mu         sync.Mutex
	versionErr error
}

var _ API = (*Client)(nil)

// NewClient creates a sandbox client.
func NewClient(config ClientConfig, tokens TokenSource) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if tokens == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "token source is required")
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "sandbox-risk/"+version.GetVersion())

	return &Client{
		rest:       httpClient,
		tokens:     tokens,
		apiVersion: config.APIVersion,
		log:        logger.NewNop(),
		mu:         sync.Mutex{},
		versionErr: nil,
	}, nil
}

// WithLogger sets the logger used for version warnings.
func (c *Client) WithLogger(log *logger.Logger) *Client {
	if log != nil {
		c.log = log
	}

	return c
}

// Close implements API.
func (c *Client) Close(ctx context.Context, req CloseRequest) (Result, error) {
	return c.mutate(ctx, http.MethodPost, PathCloseTrade, req)
}

// CancelOrder implements API.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (Result, error) {
	return c.mutate(ctx, http.MethodPost, PathCancelOrder, req)
}

// UpdateRiskLevels implements API.
func (c *Client) UpdateRiskLevels(ctx context.Context, req UpdateRiskLevelsRequest) (Result, error) {
	return c.mutate(ctx, http.MethodPut, PathUpdateTrade, req)
}

// ForceCheckPositions implements API.
func (c *Client) ForceCheckPositions(ctx context.Context) (Result, error) {
	return c.mutate(ctx, http.MethodPost, PathForceCheckPositions, nil)
}

// History implements API.
func (c *Client) History(ctx context.Context, query HistoryQuery) (history.Page, error) {
	request, err := c.newRequest(ctx)
	if err != nil {
		return history.Page{}, err
	}

	resp, err := request.SetQueryParams(query.Params()).Get(PathHistory)
	if err := c.check(http.MethodGet, PathHistory, resp, err); err != nil {
		return history.Page{}, err
	}

	if err := c.observeVersion(resp); err != nil {
		return history.Page{}, err
	}

	return history.DecodePage(resp.Body(), query.Page)
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (Result, error) {
	if err := c.incompatibility(); err != nil {
		return Result{}, err
	}

	request, err := c.newRequest(ctx)
	if err != nil {
		return Result{}, err
	}

	request.SetHeader(HeaderRequestID, uuid.NewString())
	if body != nil {
		request.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := request.Execute(method, path)
	if err := c.check(method, path, resp, err); err != nil {
		return Result{}, err
	}

	var result struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			return Result{}, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode %s response", path)
		}
	}

	if result.Success != nil && !*result.Success {
		message := firstNonEmpty(result.Message, result.Error, "request was rejected")

		return Result{}, errors.Wrap(errors.ErrCodeRequestFailed, message,
			errors.NewHTTPError(method, path, resp.StatusCode(), message))
	}

	if err := c.observeVersion(resp); err != nil {
		c.log.Warn("Sandbox backend API version is incompatible, further mutations are refused",
			zap.String("path", path),
			zap.String("client_version", c.apiVersion),
			zap.String("server_version", resp.Header().Get(HeaderAPIVersion)),
			zap.Error(err))
	}

	return Result{Success: true, Message: result.Message}, nil
}

// incompatibility returns the last version mismatch seen, if any.
func (c *Client) incompatibility() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.versionErr
}

// observeVersion checks the X-Api-Version of a successful response and
// remembers the outcome.
func (c *Client) observeVersion(resp *resty.Response) error {
	server := resp.Header().Get(HeaderAPIVersion)
	if server == "" || c.apiVersion == "" {
		return nil
	}

	err := version.CheckVersionCompatibility(c.apiVersion, server)

	c.mu.Lock()
	c.versionErr = err
	c.mu.Unlock()

	return err
}

func (c *Client) newRequest(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnauthorized, "failed to obtain bearer token", err)
	}

	if token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "bearer token is empty")
	}

	return c.rest.R().SetContext(ctx).SetAuthToken(token), nil
}

// check turns transport failures and non-2xx responses into coded errors.
func (c *Client) check(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(errors.ErrCodeRequestFailed, fmt.Sprintf("%s %s failed", method, path),
			errors.NewHTTPError(method, path, 0, err.Error()))
	}

	if resp.IsError() || !resp.IsSuccess() {
		message := serverMessage(resp.Body())
		cause := errors.NewHTTPError(method, path, resp.StatusCode(), message)
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode())
		}

		code := errors.ErrCodeRequestFailed
		if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
			code = errors.ErrCodeUnauthorized
		}

		return errors.Wrap(code, message, cause)
	}

	return nil
}

// serverMessage extracts the "message" or "error" field of an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return firstNonEmpty(payload.Message, payload.Error, "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
