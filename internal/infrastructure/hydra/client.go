package hydra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nagashima/sso-idp/internal/config"
)

// Error kinds, classifying what the admin API did.
const (
	KindNotFound  = "not_found"
	KindClient    = "client"
	KindServer    = "server"
	KindTransport = "transport"
)

// Error is a failed admin API call. Kind drives the caller's reaction:
// not_found and client are the caller's problem, server and transport are
// the delegate's.
type Error struct {
	Kind   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("hydra admin: %s", e.Kind)
	}
	return fmt.Sprintf("hydra admin: %s (status %d): %s", e.Kind, e.Status, e.Body)
}

// IsNotFound reports whether err is an unknown-challenge response.
func IsNotFound(err error) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == KindNotFound
}

// LoginRequest is the authorization server's view of a pending login.
type LoginRequest struct {
	Challenge      string   `json:"challenge"`
	Skip           bool     `json:"skip"`
	Subject        string   `json:"subject"`
	RequestedScope []string `json:"requested_scope"`
	Client         Client   `json:"client"`
}

// ConsentRequest is the authorization server's view of a pending consent.
type ConsentRequest struct {
	Challenge      string   `json:"challenge"`
	Skip           bool     `json:"skip"`
	Subject        string   `json:"subject"`
	RequestedScope []string `json:"requested_scope"`
	Client         Client   `json:"client"`
}

// LogoutRequest is the authorization server's view of a pending logout.
type LogoutRequest struct {
	Challenge string `json:"challenge"`
	Subject   string `json:"subject"`
	RPLogout  bool   `json:"rp_initiated"`
}

// Client is the OAuth2 client attached to a request.
type Client struct {
	ClientID   string                 `json:"client_id"`
	ClientName string                 `json:"client_name"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// AcceptLoginParams configures a login acceptance.
type AcceptLoginParams struct {
	Subject     string `json:"subject"`
	Remember    bool   `json:"remember"`
	RememberFor int    `json:"remember_for"`
}

// ConsentSession carries the claims released with the tokens.
type ConsentSession struct {
	IDToken     map[string]interface{} `json:"id_token,omitempty"`
	AccessToken map[string]interface{} `json:"access_token,omitempty"`
}

// AcceptConsentParams configures a consent acceptance.
type AcceptConsentParams struct {
	GrantScope  []string        `json:"grant_scope"`
	Remember    bool            `json:"remember"`
	RememberFor int             `json:"remember_for"`
	Session     *ConsentSession `json:"session,omitempty"`
}

// RejectParams is the error payload sent with a rejection.
type RejectParams struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type redirectResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// Client methods talk to the admin API with a bounded timeout and no
// retries; a slow delegate must not stall the browser.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAdminClient(cfg config.HydraConfig) *AdminClient {
	return &AdminClient{
		baseURL:    cfg.AdminURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *AdminClient) GetLoginRequest(ctx context.Context, challenge string) (*LoginRequest, error) {
	var out LoginRequest
	err := c.do(ctx, http.MethodGet, "/admin/oauth2/auth/requests/login", "login_challenge", challenge, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) AcceptLoginRequest(ctx context.Context, challenge string, params AcceptLoginParams) (string, error) {
	var out redirectResponse
	err := c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/login/accept", "login_challenge", challenge, params, &out)
	if err != nil {
		return "", err
	}
	return out.RedirectTo, nil
}

func (c *AdminClient) RejectLoginRequest(ctx context.Context, challenge string, params RejectParams) (string, error) {
	var out redirectResponse
	err := c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/login/reject", "login_challenge", challenge, params, &out)
	if err != nil {
		return "", err
	}
	return out.RedirectTo, nil
}

func (c *AdminClient) GetConsentRequest(ctx context.Context, challenge string) (*ConsentRequest, error) {
	var out ConsentRequest
	err := c.do(ctx, http.MethodGet, "/admin/oauth2/auth/requests/consent", "consent_challenge", challenge, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) AcceptConsentRequest(ctx context.Context, challenge string, params AcceptConsentParams) (string, error) {
	var out redirectResponse
	err := c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/consent/accept", "consent_challenge", challenge, params, &out)
	if err != nil {
		return "", err
	}
	return out.RedirectTo, nil
}

func (c *AdminClient) RejectConsentRequest(ctx context.Context, challenge string, params RejectParams) (string, error) {
	var out redirectResponse
	err := c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/consent/reject", "consent_challenge", challenge, params, &out)
	if err != nil {
		return "", err
	}
	return out.RedirectTo, nil
}

func (c *AdminClient) GetLogoutRequest(ctx context.Context, challenge string) (*LogoutRequest, error) {
	var out LogoutRequest
	err := c.do(ctx, http.MethodGet, "/admin/oauth2/auth/requests/logout", "logout_challenge", challenge, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AdminClient) AcceptLogoutRequest(ctx context.Context, challenge string) (string, error) {
	var out redirectResponse
	err := c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/logout/accept", "logout_challenge", challenge, nil, &out)
	if err != nil {
		return "", err
	}
	return out.RedirectTo, nil
}

func (c *AdminClient) RejectLogoutRequest(ctx context.Context, challenge string, params RejectParams) error {
	return c.do(ctx, http.MethodPut, "/admin/oauth2/auth/requests/logout/reject", "logout_challenge", challenge, params, nil)
}

func (c *AdminClient) do(ctx context.Context, method, path, queryKey, challenge string, body, out interface{}) error {
	u := c.baseURL + path + "?" + url.Values{queryKey: {challenge}}.Encode()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Body: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Kind: KindTransport, Body: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return &Error{Kind: KindNotFound, Status: resp.StatusCode, Body: string(data)}
	case resp.StatusCode >= 500:
		return &Error{Kind: KindServer, Status: resp.StatusCode, Body: string(data)}
	case resp.StatusCode >= 400:
		return &Error{Kind: KindClient, Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
