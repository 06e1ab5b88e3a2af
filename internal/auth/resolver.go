package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jkroepke/pam-auth-github/internal/authz"
	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/github"
	"github.com/zitadel/logging"
)

// API is the GitHub surface the engine needs. *github.Client implements it.
type API interface {
	GetUser(ctx context.Context, accessToken string) (github.User, error)
	GetOrgMembership(ctx context.Context, accessToken, org, login string) (github.OrgMembership, bool, error)
	GetUserTeams(ctx context.Context, accessToken string) ([]github.Team, error)
	GetUserKeys(ctx context.Context, accessToken, login string) ([]github.PublicKey, error)
}

// Resolver turns a granted access token into identity and membership
// facts. Facts are resolved fresh for every login attempt.
type Resolver struct {
	api  API
	conf config.Config
}

func NewResolver(conf config.Config, api API) *Resolver {
	return &Resolver{api: api, conf: conf}
}

// Resolve fetches the token owner, its membership in the configured
// organization and, when needed for the policy, its teams within that
// organization. Public keys are fetched only when key import is enabled
// and their absence never fails the attempt.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (authz.Facts, []string, error) {
	logger, _ := logging.FromContext(ctx)

	user, err := r.api.GetUser(ctx, accessToken)
	if err != nil {
		return authz.Facts{}, nil, fmt.Errorf("resolving identity: %w", err)
	}

	facts := authz.Facts{
		Login:  user.Login,
		UserID: user.ID,
	}

	membership, member, err := r.api.GetOrgMembership(ctx, accessToken, r.conf.GitHub.Organization, user.Login)
	if err != nil {
		return authz.Facts{}, nil, fmt.Errorf("resolving org membership: %w", err)
	}

	facts.OrgMember = member

	if r.needsTeams() && member {
		teams, err := r.api.GetUserTeams(ctx, accessToken)
		if err != nil {
			return authz.Facts{}, nil, fmt.Errorf("resolving teams: %w", err)
		}

		for _, team := range teams {
			if strings.EqualFold(team.Org.Login, r.conf.GitHub.Organization) {
				facts.Teams = append(facts.Teams, team.Slug)
			}
		}
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "resolved GitHub identity",
		slog.String("login", user.Login),
		slog.Bool("orgMember", member),
		slog.String("membershipState", membership.State),
		slog.Int("teams", len(facts.Teams)))

	var keys []string

	if r.conf.Provision.Enabled && r.conf.Provision.ImportKeys {
		publicKeys, err := r.api.GetUserKeys(ctx, accessToken, user.Login)
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "unable to fetch public keys, continuing without",
				slog.String("error", err.Error()))
		}

		for _, publicKey := range publicKeys {
			keys = append(keys, publicKey.Key)
		}
	}

	return facts, keys, nil
}

func (r *Resolver) needsTeams() bool {
	return len(r.conf.GitHub.Teams) > 0 || r.conf.Auth.Validate.CEL != ""
}
