// Package cmd wires configuration, logging and the auth engine into the
// pam_exec entrypoint. Exit code 0 allows the login, 1 denies it.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/jkroepke/pam-auth-github/internal/auth"
	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/github"
	"github.com/jkroepke/pam-auth-github/internal/provision/localos"
	"github.com/jkroepke/pam-auth-github/internal/utils"
	"github.com/jkroepke/pam-auth-github/internal/version"
	"github.com/zitadel/logging"
)

// Execute runs one authentication attempt. stdin/stdout carry the
// pam_exec conversation with the logging-in user, stderr carries the
// structured log.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	conf, err := config.New(args, stderr)
	if err != nil {
		if errors.Is(err, config.ErrVersion) {
			fmt.Fprintf(stdout, "version: %s\ncommit: %s\ndate: %s\ngo: %s\n",
				version.Version, version.Commit, version.Date, runtime.Version())

			return 0
		}

		if config.IsErrHelp(err) {
			return 0
		}

		fmt.Fprintln(stderr, "error loading config:", err.Error())

		return 1
	}

	logger, err := configureLogger(conf, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error configuring logging:", err.Error())

		return 1
	}

	httpClient, err := utils.NewHTTPClient(conf.HTTP.CAFile, conf.HTTP.Timeout)
	if err != nil {
		logger.Error("error building http client: " + err.Error())

		return 1
	}

	client, err := github.NewClient(conf, httpClient)
	if err != nil {
		logger.Error("error building GitHub client: " + err.Error())

		return 1
	}

	authenticator, err := auth.New(conf, client, newConversation(stdin, stdout), localos.New(conf))
	if err != nil {
		logger.Error("error building auth engine: " + err.Error())

		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Auth.PendingTimeout)
	defer cancel()

	ctx = logging.ToContext(ctx, logger)

	// pam_exec hands the requested account name over via environment
	requestedUser := os.Getenv("PAM_USER")

	result, err := authenticator.Authenticate(ctx, requestedUser)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "authentication failed",
			slog.String("requestedUser", requestedUser),
			slog.String("error", err.Error()))

		return 1
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "login allowed",
		slog.String("username", result.Username),
		slog.String("reason", string(result.Reason)))

	return 0
}

func configureLogger(conf config.Config, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     conf.Log.Level,
	}

	switch conf.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "console":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", conf.Log.Format)
	}
}
