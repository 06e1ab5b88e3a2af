package github_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jkroepke/pam-auth-github/internal/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

func TestDeviceAuthorization(t *testing.T) {
	t.Parallel()

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login/device/code", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "read:org", r.PostForm.Get("scope"))

		_, _ = w.Write([]byte(`{
			"device_code": "dev-1",
			"user_code": "ABCD-1234",
			"verification_uri": "https://github.com/login/device",
			"expires_in": 900,
			"interval": 5
		}`))
	}))
	defer svr.Close()

	client, err := github.NewClient(testConf(t, svr.URL), svr.Client())
	require.NoError(t, err)

	devCode, err := client.DeviceAuthorization(t.Context(), []string{"read:org"})
	require.NoError(t, err)

	assert.Equal(t, "dev-1", devCode.DeviceCode)
	assert.Equal(t, "ABCD-1234", devCode.UserCode)
	assert.Equal(t, "https://github.com/login/device", devCode.VerificationURI)
	assert.Equal(t, 5, devCode.Interval)
	assert.Equal(t, 900, devCode.ExpiresIn)
}

func TestDeviceAuthorizationIncomplete(t *testing.T) {
	t.Parallel()

	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"interval": 5}`))
	}))
	defer svr.Close()

	client, err := github.NewClient(testConf(t, svr.URL), svr.Client())
	require.NoError(t, err)

	_, err = client.DeviceAuthorization(t.Context(), nil)
	require.ErrorContains(t, err, "incomplete device authorization response")
}

func TestDeviceAccessToken(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name        string
		statusCode  int
		body        string
		token       string
		errCode     string
		errInterval int64
		err         string
	}{
		{
			name:       "token issued",
			statusCode: http.StatusOK,
			body:       `{"access_token": "gho_abc", "token_type": "bearer", "scope": "read:org"}`,
			token:      "gho_abc",
		},
		{
			name:       "authorization pending",
			statusCode: http.StatusOK,
			body:       `{"error": "authorization_pending", "error_description": "authorize first"}`,
			errCode:    string(oidc.AuthorizationPending),
		},
		{
			name:        "slow down with replacement interval",
			statusCode:  http.StatusOK,
			body:        `{"error": "slow_down", "interval": 10}`,
			errCode:     string(oidc.SlowDown),
			errInterval: 10,
		},
		{
			name:       "access denied rfc style",
			statusCode: http.StatusBadRequest,
			body:       `{"error": "access_denied"}`,
			errCode:    string(oidc.AccessDenied),
		},
		{
			name:       "expired token",
			statusCode: http.StatusOK,
			body:       `{"error": "expired_token"}`,
			errCode:    string(oidc.ExpiredToken),
		},
		{
			name:       "empty body",
			statusCode: http.StatusOK,
			body:       `{}`,
			err:        "neither access_token nor error",
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			body:       `bad gateway`,
			err:        "http status code: 502",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/login/oauth/access_token", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
				assert.Equal(t, "dev-1", r.PostForm.Get("device_code"))
				assert.Equal(t, string(oidc.GrantTypeDeviceCode), r.PostForm.Get("grant_type"))

				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer svr.Close()

			client, err := github.NewClient(testConf(t, svr.URL), svr.Client())
			require.NoError(t, err)

			token, err := client.DeviceAccessToken(t.Context(), "dev-1")

			switch {
			case tt.token != "":
				require.NoError(t, err)
				assert.Equal(t, tt.token, token.AccessToken)
			case tt.errCode != "":
				var tokenErr *github.TokenError

				require.ErrorAs(t, err, &tokenErr)
				assert.Equal(t, tt.errCode, tokenErr.Code)
				assert.Equal(t, tt.errInterval, tokenErr.Interval)
			default:
				require.ErrorContains(t, err, tt.err)
			}
		})
	}
}
