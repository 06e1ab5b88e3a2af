// Package deviceauth drives the OAuth device authorization grant: it
// obtains a user code for the interactive prompt and polls the token
// endpoint until the user approves, denies or the code expires.
package deviceauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/github"
	"github.com/zitadel/logging"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	minPollInterval     = time.Second
	defaultPollInterval = 5 * time.Second
	slowDownStep        = 5 * time.Second
	maxTransportErrors  = 3
)

var (
	// ErrAccessDenied means the user rejected the authorization request.
	ErrAccessDenied = errors.New("authorization request denied by user")
	// ErrExpired means the device code lapsed before the user approved it.
	ErrExpired = errors.New("device code expired")
)

// Transport is the subset of the GitHub client used by the flow.
type Transport interface {
	DeviceAuthorization(ctx context.Context, scopes []string) (*oidc.DeviceAuthorizationResponse, error)
	DeviceAccessToken(ctx context.Context, deviceCode string) (*oauth2.Token, error)
}

type Flow struct {
	transport Transport
	conf      config.Config
	now       func() time.Time
}

// Session is one started device authorization. ExpiresAt is derived from
// the server's expires_in at Start time.
type Session struct {
	*oidc.DeviceAuthorizationResponse

	ExpiresAt time.Time
}

func NewFlow(conf config.Config, transport Transport) *Flow {
	return &Flow{
		transport: transport,
		conf:      conf,
		now:       time.Now,
	}
}

// Start requests a device and user code pair for the configured scopes.
func (f *Flow) Start(ctx context.Context) (Session, error) {
	devCode, err := f.transport.DeviceAuthorization(ctx, f.conf.OAuth2.Scopes)
	if err != nil {
		return Session{}, fmt.Errorf("starting device authorization: %w", err)
	}

	return Session{
		DeviceAuthorizationResponse: devCode,
		ExpiresAt:                   f.now().Add(time.Duration(devCode.ExpiresIn) * time.Second),
	}, nil
}

// Wait polls the token endpoint until the session resolves. It honors the
// server's poll interval, backs off on slow_down and tolerates up to
// maxTransportErrors consecutive transport failures. Denial and expiry
// surface as ErrAccessDenied and ErrExpired.
func (f *Flow) Wait(ctx context.Context, session Session) (*oauth2.Token, error) {
	logger, _ := logging.FromContext(ctx)
	interval := startInterval(session)

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// drain the initial token, the first poll happens one interval in
	limiter.Allow()

	var transportErrs int

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for next token poll: %w", err)
		}

		if !f.now().Before(session.ExpiresAt) {
			return nil, ErrExpired
		}

		token, err := f.transport.DeviceAccessToken(ctx, session.DeviceCode)
		if err == nil {
			return token, nil
		}

		var tokenErr *github.TokenError
		if !errors.As(err, &tokenErr) {
			transportErrs++
			if transportErrs >= maxTransportErrors {
				return nil, fmt.Errorf("polling token endpoint: %w", err)
			}

			logger.LogAttrs(ctx, slog.LevelWarn, "transient error polling token endpoint",
				slog.String("error", err.Error()))

			continue
		}

		transportErrs = 0

		switch tokenErr.Code {
		case string(oidc.AuthorizationPending):
		case string(oidc.SlowDown):
			if next := nextInterval(interval, tokenErr.Interval); next > interval {
				interval = next
				limiter.SetLimit(rate.Every(interval))

				logger.LogAttrs(ctx, slog.LevelDebug, "token endpoint requested slower polling",
					slog.Duration("interval", interval))
			}
		case string(oidc.AccessDenied):
			return nil, ErrAccessDenied
		case string(oidc.ExpiredToken):
			return nil, ErrExpired
		default:
			return nil, fmt.Errorf("token endpoint rejected poll: %w", tokenErr)
		}
	}
}

func startInterval(session Session) time.Duration {
	interval := time.Duration(session.Interval) * time.Second
	if interval <= 0 {
		return defaultPollInterval
	}

	if interval < minPollInterval {
		return minPollInterval
	}

	return interval
}

// nextInterval resolves a slow_down answer. The server's replacement
// interval wins when present, otherwise the current interval grows by a
// fixed step. The result never shrinks below the current interval.
func nextInterval(current time.Duration, serverInterval int64) time.Duration {
	next := current + slowDownStep
	if serverInterval > 0 {
		next = time.Duration(serverInterval) * time.Second
	}

	if next < current {
		return current
	}

	return next
}
