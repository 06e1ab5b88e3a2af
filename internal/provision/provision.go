// Package provision turns an authorized GitHub identity into a local OS
// account: derive the account name, create the account if missing, grant
// sudo when configured and optionally import the user's public SSH keys.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/config/types"
	"github.com/zitadel/logging"
	"golang.org/x/crypto/ssh"
)

// ErrFailed marks provisioning failures. They are fatal for the login
// attempt.
var ErrFailed = errors.New("provisioning failed")

// Provisioner is the narrow OS-side contract. Every method is idempotent.
type Provisioner interface {
	AccountExists(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, username, home, shell string) error
	GrantPrivilege(ctx context.Context, username string) error
	AppendAuthorizedKey(ctx context.Context, username, key string) error
}

// Conversation is the user-facing prompt channel for the key import
// choice.
type Conversation interface {
	Display(message string) error
	Ask(prompt string) (bool, error)
}

// Identity is the provisioning input resolved from GitHub.
type Identity struct {
	Login string
	Keys  []string
}

// Account describes the provisioning outcome. Created reports whether
// this run created the account rather than finding it.
type Account struct {
	Username   string
	Created    bool
	Privileged bool
}

type Orchestrator struct {
	conf        config.Config
	provisioner Provisioner
	conv        Conversation
}

func New(conf config.Config, provisioner Provisioner, conv Conversation) *Orchestrator {
	return &Orchestrator{
		conf:        conf,
		provisioner: provisioner,
		conv:        conv,
	}
}

// Provision ensures the local account for identity exists and matches the
// configured mode. Running it again for the same identity yields the same
// account and no error.
func (o *Orchestrator) Provision(ctx context.Context, identity Identity) (Account, error) {
	logger, _ := logging.FromContext(ctx)

	account := Account{Username: DeriveUsername(identity.Login)}

	exists, err := o.provisioner.AccountExists(ctx, account.Username)
	if err != nil {
		return Account{}, fmt.Errorf("%w: checking account %s: %w", ErrFailed, account.Username, err)
	}

	if !exists {
		home := filepath.Join(o.conf.Provision.HomeDir, account.Username)

		if err = o.provisioner.CreateAccount(ctx, account.Username, home, o.conf.Provision.Shell); err != nil {
			return Account{}, fmt.Errorf("%w: creating account %s: %w", ErrFailed, account.Username, err)
		}

		account.Created = true

		logger.LogAttrs(ctx, slog.LevelInfo, "created local account",
			slog.String("username", account.Username))
	}

	if o.conf.Provision.Mode == types.ProvisionModeSudoer {
		if err = o.provisioner.GrantPrivilege(ctx, account.Username); err != nil {
			return Account{}, fmt.Errorf("%w: granting sudo to %s: %w", ErrFailed, account.Username, err)
		}

		account.Privileged = true
	}

	if o.conf.Provision.ImportKeys && len(identity.Keys) > 0 {
		o.importKeys(ctx, account.Username, identity.Keys)
	}

	return account, nil
}

func (o *Orchestrator) importKeys(ctx context.Context, username string, keys []string) {
	logger, _ := logging.FromContext(ctx)

	ok, err := o.conv.Ask(fmt.Sprintf("Import your %d GitHub public SSH key(s) into ~/.ssh/authorized_keys? [y/N] ", len(keys)))
	if err != nil || !ok {
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "key import prompt failed", slog.String("error", err.Error()))
		}

		return
	}

	seen := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		publicKey, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(key))
		if err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping unparsable public key", slog.String("error", err.Error()))

			continue
		}

		line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(publicKey)))
		if comment != "" {
			line += " " + comment
		}

		if _, dup := seen[line]; dup {
			continue
		}

		seen[line] = struct{}{}

		if err = o.provisioner.AppendAuthorizedKey(ctx, username, line); err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "failed to import public key", slog.String("error", err.Error()))
		}
	}
}
