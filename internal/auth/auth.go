// Package auth is the login engine. It runs the device authorization
// flow, resolves the resulting identity against the configured GitHub
// organization, applies the access policy and provisions the local
// account.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/authz"
	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/deviceauth"
	"github.com/jkroepke/pam-auth-github/internal/provision"
	"github.com/zitadel/logging"
)

var (
	// ErrNotAuthorized means the identity was resolved but the policy
	// rejected it.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUsernameMismatch means the requested account name does not belong
	// to the authenticated GitHub identity.
	ErrUsernameMismatch = errors.New("requested username does not match GitHub identity")
)

// Conversation is the interactive channel to the logging-in user. The
// PAM glue implements it over the pam_exec stdin/stdout protocol.
type Conversation interface {
	Display(message string) error
	Ask(prompt string) (bool, error)
}

// GitHubClient is everything the engine needs from the transport
// adapter. *github.Client implements it.
type GitHubClient interface {
	deviceauth.Transport
	API
}

// Result is a successful authentication.
type Result struct {
	Username string
	Reason   authz.Reason
}

type Authenticator struct {
	conf         config.Config
	flow         *deviceauth.Flow
	resolver     *Resolver
	checker      *authz.Checker
	orchestrator *provision.Orchestrator
	conv         Conversation
}

// New builds the engine. The CEL expression is compiled here so a broken
// expression fails at startup, not mid-login.
func New(conf config.Config, api GitHubClient, conv Conversation, provisioner provision.Provisioner) (*Authenticator, error) {
	checker, err := authz.NewChecker(conf.Auth.Validate.CEL)
	if err != nil {
		return nil, fmt.Errorf("configuring auth.validate.cel: %w", err)
	}

	return &Authenticator{
		conf:         conf,
		flow:         deviceauth.NewFlow(conf, api),
		resolver:     NewResolver(conf, api),
		checker:      checker,
		orchestrator: provision.New(conf, provisioner, conv),
		conv:         conv,
	}, nil
}

// Authenticate runs one full login attempt for the requested account
// name. It returns a Result on success, ErrNotAuthorized or
// ErrUsernameMismatch on denial and the deviceauth sentinels when the
// device flow itself ends the attempt.
func (a *Authenticator) Authenticate(ctx context.Context, requestedUser string) (Result, error) {
	logger, _ := logging.FromContext(ctx)

	session, err := a.flow.Start(ctx)
	if err != nil {
		return Result{}, err
	}

	if err = a.conv.Display(loginPrompt(session)); err != nil {
		return Result{}, fmt.Errorf("prompting user: %w", err)
	}

	token, err := a.flow.Wait(ctx, session)
	if err != nil {
		return Result{}, err
	}

	facts, keys, err := a.resolver.Resolve(ctx, token.AccessToken)
	if err != nil {
		return Result{Reason: authz.ReasonIdentityError}, err
	}

	decision := authz.Decide(facts, a.conf.GitHub.Teams)
	if !decision.Allowed {
		logger.LogAttrs(ctx, slog.LevelInfo, "access denied by policy",
			slog.String("login", facts.Login),
			slog.String("reason", string(decision.Reason)))

		return Result{Reason: decision.Reason}, fmt.Errorf("%w: %s", ErrNotAuthorized, decision.Reason)
	}

	if err = a.checker.Check(facts); err != nil {
		logger.LogAttrs(ctx, slog.LevelInfo, "access denied by CEL expression",
			slog.String("login", facts.Login))

		return Result{Reason: decision.Reason}, fmt.Errorf("%w: %w", ErrNotAuthorized, err)
	}

	username := provision.DeriveUsername(facts.Login)

	if a.conf.Auth.MatchUsername && requestedUser != "" && requestedUser != username {
		return Result{Reason: decision.Reason},
			fmt.Errorf("%w: requested %s, derived %s", ErrUsernameMismatch, requestedUser, username)
	}

	if a.conf.Provision.Enabled {
		if _, err = a.orchestrator.Provision(ctx, provision.Identity{Login: facts.Login, Keys: keys}); err != nil {
			return Result{Reason: decision.Reason}, err
		}
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "authentication successful",
		slog.String("login", facts.Login),
		slog.String("username", username),
		slog.String("reason", string(decision.Reason)))

	return Result{Username: username, Reason: decision.Reason}, nil
}

func loginPrompt(session deviceauth.Session) string {
	expiry := time.Duration(session.ExpiresIn) * time.Second

	return fmt.Sprintf(
		"Please visit %s and enter the following code: %s\nYou have %s to complete this step.",
		session.VerificationURI, session.UserCode, expiry.Round(time.Minute))
}
