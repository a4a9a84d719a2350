// Package remote provides the client adapter for a CKAN-style remote catalog
// action API. It translates transport failures and the CKAN error envelope
// into the typed outcomes the reconciliation engine needs: not-found,
// not-authorized, structured validation failure, or transient transport
// error.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
)

// API is the remote catalog surface the syndication core calls. The
// reconciliation engine depends on this interface so tests can substitute an
// in-memory remote.
type API interface {
	PackageShow(ctx context.Context, id string) (*catalog.Dataset, error)
	PackageCreate(ctx context.Context, ds *catalog.Dataset) (*catalog.Dataset, error)
	PackageUpdate(ctx context.Context, id string, ds *catalog.Dataset) (*catalog.Dataset, error)
	PackageDelete(ctx context.Context, id string) error
	OrganizationShow(ctx context.Context, idOrName string) (*catalog.Organization, error)
	OrganizationCreate(ctx context.Context, org *catalog.Organization) (*catalog.Organization, error)
	UserShow(ctx context.Context, idOrName string) (*catalog.User, error)
}

// Factory builds a client for one profile. Clients are constructed per
// reconciliation call and never cached across profiles, so credentials cannot
// leak between targets.
type Factory func(p profile.Profile) (API, error)

// Client talks to one remote catalog over its action API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outbound calls at n requests per second with the given
// burst. Zero n disables limiting.
func WithRateLimit(n float64, burst int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), burst)
		}
	}
}

// NewClient creates a client for the catalog at baseURL authenticating with
// apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("base URL %q is not absolute", baseURL),
			"Client", "NewClient", "parse base URL")
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "syndicate/" + Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Version is the adapter version reported in the User-Agent header.
const Version = "0.1.0"

// NewFactory returns a Factory that builds one client per profile with the
// given shared options.
func NewFactory(opts ...Option) Factory {
	return func(p profile.Profile) (API, error) {
		return NewClient(p.URL, p.APIKey, opts...)
	}
}

// envelope is the CKAN action API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *apiError       `json:"error,omitempty"`
}

// apiError is the CKAN error payload. Field-level validation messages arrive
// as sibling keys next to "__type" and "message", so it unmarshals twice:
// once for the markers, once for the field map.
type apiError struct {
	Type    string
	Message string
	Fields  map[string][]string
}

func (e *apiError) UnmarshalJSON(data []byte) error {
	var markers struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &markers); err != nil {
		return err
	}
	e.Type = markers.Type
	e.Message = markers.Message

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "__type")
	delete(raw, "message")

	e.Fields = make(map[string][]string, len(raw))
	for key, val := range raw {
		var msgs []string
		if err := json.Unmarshal(val, &msgs); err == nil {
			e.Fields[key] = msgs
			continue
		}
		var msg string
		if err := json.Unmarshal(val, &msg); err == nil {
			e.Fields[key] = []string{msg}
		}
	}
	return nil
}

// call posts params to the named action and decodes the result into out.
func (c *Client) call(ctx context.Context, action string, params, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.WrapTransient(err, "Client", "call", "rate limit wait")
		}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return errors.WrapInvalid(err, "Client", "call", "encode params")
	}

	endpoint := c.baseURL + "/api/3/action/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WrapInvalid(err, "Client", "call", "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WrapTransient(err, "Client", "call", action)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return errors.WrapTransient(err, "Client", "call", "read response")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// Non-JSON responses (proxies, HTML error pages) are transport-level
		// failures, not API outcomes.
		return errors.WrapTransient(
			fmt.Errorf("HTTP %d: undecodable response", resp.StatusCode),
			"Client", "call", action)
	}

	if !env.Success {
		return c.actionError(action, resp.StatusCode, env.Error)
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return errors.WrapInvalid(err, "Client", "call", "decode result")
		}
	}
	return nil
}

// actionError maps the CKAN error envelope onto the adapter's typed outcomes.
func (c *Client) actionError(action string, status int, apiErr *apiError) error {
	if apiErr == nil {
		if status >= 500 {
			return errors.WrapTransient(
				fmt.Errorf("HTTP %d", status), "Client", action, "remote call")
		}
		return errors.Wrap(fmt.Errorf("HTTP %d", status), "Client", action, "remote call")
	}

	switch apiErr.Type {
	case "Not Found Error":
		return fmt.Errorf("%s: %w", action, errors.ErrRemoteNotFound)
	case "Authorization Error":
		return fmt.Errorf("%s: %w", action, errors.ErrNotAuthorized)
	case "Validation Error":
		return &ValidationError{Action: action, Fields: apiErr.Fields}
	default:
		if status >= 500 {
			return errors.WrapTransient(
				fmt.Errorf("%s: %s", apiErr.Type, apiErr.Message),
				"Client", action, "remote call")
		}
		return errors.Wrap(
			fmt.Errorf("%s: %s", apiErr.Type, apiErr.Message),
			"Client", action, "remote call")
	}
}

type idParam struct {
	ID string `json:"id"`
}

// PackageShow fetches a dataset by id or name.
func (c *Client) PackageShow(ctx context.Context, id string) (*catalog.Dataset, error) {
	var ds catalog.Dataset
	if err := c.call(ctx, "package_show", idParam{ID: id}, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// PackageCreate creates a dataset on the remote catalog.
func (c *Client) PackageCreate(ctx context.Context, ds *catalog.Dataset) (*catalog.Dataset, error) {
	var created catalog.Dataset
	if err := c.call(ctx, "package_create", ds, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// PackageUpdate updates the dataset with the given remote id.
func (c *Client) PackageUpdate(ctx context.Context, id string, ds *catalog.Dataset) (*catalog.Dataset, error) {
	payload := ds.Clone()
	payload.ID = id

	var updated catalog.Dataset
	if err := c.call(ctx, "package_update", payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PackageDelete deletes the dataset with the given remote id.
func (c *Client) PackageDelete(ctx context.Context, id string) error {
	return c.call(ctx, "package_delete", idParam{ID: id}, nil)
}

// OrganizationShow fetches an organization by id or name.
func (c *Client) OrganizationShow(ctx context.Context, idOrName string) (*catalog.Organization, error) {
	var org catalog.Organization
	if err := c.call(ctx, "organization_show", idParam{ID: idOrName}, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// OrganizationCreate creates an organization on the remote catalog.
func (c *Client) OrganizationCreate(ctx context.Context, org *catalog.Organization) (*catalog.Organization, error) {
	var created catalog.Organization
	if err := c.call(ctx, "organization_create", org, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UserShow fetches a user by id or name.
func (c *Client) UserShow(ctx context.Context, idOrName string) (*catalog.User, error) {
	var user catalog.User
	if err := c.call(ctx, "user_show", idParam{ID: idOrName}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
