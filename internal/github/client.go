// Package github is the HTTP/JSON transport adapter for the GitHub OAuth
// device flow and the REST endpoints needed for membership resolution.
// It carries no decision logic.
package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/jkroepke/pam-auth-github/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const apiVersion = "2022-11-28"

type Client struct {
	httpClient *http.Client
	conf       config.Config
	endpoint   oauth2.Endpoint
}

// NewClient returns a GitHub client configured with the given settings.
// Endpoints default to the public github.com instance unless both overrides
// are configured.
func NewClient(conf config.Config, httpClient *http.Client) (*Client, error) {
	endpoint, err := getEndpoint(conf)
	if err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		conf:       conf,
		endpoint:   endpoint,
	}, nil
}

func getEndpoint(conf config.Config) (oauth2.Endpoint, error) {
	if conf.OAuth2.Endpoints.DeviceAuth.IsEmpty() && conf.OAuth2.Endpoints.Token.IsEmpty() {
		return endpoints.GitHub, nil
	}

	if conf.OAuth2.Endpoints.DeviceAuth.IsEmpty() || conf.OAuth2.Endpoints.Token.IsEmpty() {
		return oauth2.Endpoint{}, errors.New("both oauth2.endpoint.device-auth and oauth2.endpoint.token are required")
	}

	return oauth2.Endpoint{
		DeviceAuthURL: conf.OAuth2.Endpoints.DeviceAuth.String(),
		TokenURL:      conf.OAuth2.Endpoints.Token.String(),
	}, nil
}

// User is the authenticated-user payload of GET /user.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Org is the embedded organization of a team entry.
type Org struct {
	Login string `json:"login"`
}

// OrgMembership is the payload of GET /orgs/{org}/memberships/{username}.
type OrgMembership struct {
	State string `json:"state"`
	Role  string `json:"role"`
}

// Team is one entry of GET /user/teams.
type Team struct {
	Name string `json:"name"`
	Org  Org    `json:"organization"`
	Slug string `json:"slug"`
}

// PublicKey is one entry of GET /users/{username}/keys.
type PublicKey struct {
	ID  int64  `json:"id"`
	Key string `json:"key"`
}

// GetUser fetches login and id of the token owner.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var user User

	apiURL := c.conf.GitHub.APIURL.JoinPath("user").String()
	if _, err := get(ctx, c.httpClient, accessToken, apiURL, &user); err != nil {
		return User{}, err
	}

	return user, nil
}

// GetOrgMembership reports whether login is a member of org. GitHub answers
// 404 for non-members and 403 for insufficient scope on private membership,
// both of which mean "not a member" here, never a transport error.
func (c *Client) GetOrgMembership(ctx context.Context, accessToken, org, login string) (OrgMembership, bool, error) {
	var membership OrgMembership

	apiURL := c.conf.GitHub.APIURL.JoinPath("orgs", org, "memberships", login).String()

	_, err := get(ctx, c.httpClient, accessToken, apiURL, &membership)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusForbidden) {
			return OrgMembership{}, false, nil
		}

		return OrgMembership{}, false, err
	}

	return membership, true, nil
}

// GetUserTeams lists all teams of the token owner across organizations,
// following pagination.
func (c *Client) GetUserTeams(ctx context.Context, accessToken string) ([]Team, error) {
	var allTeams []Team

	apiURL := c.conf.GitHub.APIURL.JoinPath("user", "teams").String()

	for {
		var (
			teams []Team
			err   error
		)

		if apiURL, err = get(ctx, c.httpClient, accessToken, apiURL, &teams); err != nil {
			return nil, err
		}

		allTeams = append(allTeams, teams...)

		if apiURL == "" {
			break
		}
	}

	return allTeams, nil
}

// GetUserKeys lists the public SSH keys of the given login, following
// pagination.
func (c *Client) GetUserKeys(ctx context.Context, accessToken, login string) ([]PublicKey, error) {
	var allKeys []PublicKey

	apiURL := c.conf.GitHub.APIURL.JoinPath("users", login, "keys").String()

	for {
		var (
			keys []PublicKey
			err  error
		)

		if apiURL, err = get(ctx, c.httpClient, accessToken, apiURL, &keys); err != nil {
			return nil, err
		}

		allKeys = append(allKeys, keys...)

		if apiURL == "" {
			break
		}
	}

	return allKeys, nil
}
