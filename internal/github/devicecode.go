package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
)

// TokenError is a poll outcome reported by the token endpoint. GitHub
// returns these inside HTTP 200 bodies; RFC 8628 servers use HTTP 400.
// Code carries the RFC error code, Interval a replacement poll interval
// when the server sends one alongside slow_down.
type TokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
	Interval    int64  `json:"interval,omitempty"`
}

func (e *TokenError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}

	return e.Code
}

type accessTokenResponse struct {
	TokenError

	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// DeviceAuthorization requests a device and user code pair for the
// configured client.
func (c *Client) DeviceAuthorization(ctx context.Context, scopes []string) (*oidc.DeviceAuthorizationResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.conf.OAuth2.Client.ID)

	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}

	respBody, err := c.postForm(ctx, c.endpoint.DeviceAuthURL, form)
	if err != nil {
		return nil, err
	}

	var devCode oidc.DeviceAuthorizationResponse
	if err = json.Unmarshal(respBody, &devCode); err != nil {
		return nil, fmt.Errorf("unable to decode device authorization response '%s': %w", respBody, err)
	}

	if devCode.DeviceCode == "" || devCode.UserCode == "" || devCode.VerificationURI == "" {
		return nil, fmt.Errorf("incomplete device authorization response '%s'", respBody)
	}

	return &devCode, nil
}

// DeviceAccessToken performs a single token poll for the given device code.
// Pending, slow_down, denial and expiry outcomes surface as *TokenError.
func (c *Client) DeviceAccessToken(ctx context.Context, deviceCode string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("client_id", c.conf.OAuth2.Client.ID)
	form.Set("device_code", deviceCode)
	form.Set("grant_type", string(oidc.GrantTypeDeviceCode))

	if secret := c.conf.OAuth2.Client.Secret.String(); secret != "" {
		form.Set("client_secret", secret)
	}

	respBody, err := c.postForm(ctx, c.endpoint.TokenURL, form)
	if err != nil {
		return nil, err
	}

	var tokenResp accessTokenResponse
	if err = json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, fmt.Errorf("unable to decode token response '%s': %w", respBody, err)
	}

	if tokenResp.Code != "" {
		tokenErr := tokenResp.TokenError

		return nil, &tokenErr
	}

	if tokenResp.AccessToken == "" {
		return nil, errors.New("token response carries neither access_token nor error")
	}

	return &oauth2.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request context with URL %s: %w", endpoint, err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", endpoint, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read body from %s: http status code: %d; error: %w", endpoint, resp.StatusCode, err)
	}

	resp.Body.Close()

	// RFC 8628 servers report poll errors with HTTP 400, github.com with
	// HTTP 200. Accept both and let the caller classify the body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, &APIError{URL: endpoint, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}
