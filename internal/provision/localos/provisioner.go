// Package localos provisions accounts on the local host with the usual
// admin tooling: id/useradd for accounts, a sudoers.d drop-in checked by
// visudo for privileges and a direct authorized_keys rewrite for keys.
package localos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/utils"
)

type Provisioner struct {
	conf       config.Config
	lookupUser func(username string) (*user.User, error)
}

func New(conf config.Config) *Provisioner {
	return &Provisioner{
		conf:       conf,
		lookupUser: user.Lookup,
	}
}

// AccountExists asks the local account database via id.
func (p *Provisioner) AccountExists(ctx context.Context, username string) (bool, error) {
	err := exec.CommandContext(ctx, "id", "-u", username).Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}

	return false, fmt.Errorf("running id: %w", err)
}

func (p *Provisioner) CreateAccount(ctx context.Context, username, home, shell string) error {
	out, err := exec.CommandContext(ctx, "useradd", "-m", "-d", home, "-s", shell, username).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running useradd for %s: %w: %s", username, err, bytes.TrimSpace(out))
	}

	return nil
}

// GrantPrivilege drops a NOPASSWD rule into sudoers-dir and verifies it
// with visudo. A file that fails verification is removed again so a broken
// rule never lingers.
func (p *Provisioner) GrantPrivilege(ctx context.Context, username string) error {
	sudoersFile := filepath.Join(p.conf.Provision.SudoersDir, username)

	if _, err := os.Stat(sudoersFile); err == nil {
		return nil
	}

	content := utils.StringConcat(username, "  ALL=(ALL) NOPASSWD:ALL\n")
	if err := os.WriteFile(sudoersFile, []byte(content), 0o440); err != nil {
		return fmt.Errorf("writing sudoers file: %w", err)
	}

	out, err := exec.CommandContext(ctx, "visudo", "-c", "-f", sudoersFile).CombinedOutput()
	if err != nil {
		_ = os.Remove(sudoersFile)

		return fmt.Errorf("invalid sudoers syntax for %s: %w: %s", username, err, bytes.TrimSpace(out))
	}

	return nil
}

// AppendAuthorizedKey adds key to the account's authorized_keys unless an
// identical line is already present. The file is replaced via temp file
// and rename, existing lines are kept untouched.
func (p *Provisioner) AppendAuthorizedKey(_ context.Context, username, key string) error {
	account, err := p.lookupUser(username)
	if err != nil {
		return fmt.Errorf("looking up account %s: %w", username, err)
	}

	uid, err := strconv.Atoi(account.Uid)
	if err != nil {
		return fmt.Errorf("parsing uid of %s: %w", username, err)
	}

	gid, err := strconv.Atoi(account.Gid)
	if err != nil {
		return fmt.Errorf("parsing gid of %s: %w", username, err)
	}

	sshDir := filepath.Join(account.HomeDir, ".ssh")
	if err = os.MkdirAll(sshDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", sshDir, err)
	}

	if err = os.Chown(sshDir, uid, gid); err != nil {
		return fmt.Errorf("chowning %s: %w", sshDir, err)
	}

	authKeysFile := filepath.Join(sshDir, "authorized_keys")

	existing, err := os.ReadFile(authKeysFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", authKeysFile, err)
	}

	key = strings.TrimSpace(key)

	for line := range strings.Lines(string(existing)) {
		if strings.TrimSpace(line) == key {
			return nil
		}
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	content += key + "\n"

	tmpFile, err := os.CreateTemp(sshDir, "authorized_keys-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", sshDir, err)
	}

	defer os.Remove(tmpFile.Name())

	if _, err = tmpFile.WriteString(content); err != nil {
		tmpFile.Close()

		return fmt.Errorf("writing %s: %w", tmpFile.Name(), err)
	}

	if err = tmpFile.Chmod(0o600); err != nil {
		tmpFile.Close()

		return fmt.Errorf("chmodding %s: %w", tmpFile.Name(), err)
	}

	if err = tmpFile.Chown(uid, gid); err != nil {
		tmpFile.Close()

		return fmt.Errorf("chowning %s: %w", tmpFile.Name(), err)
	}

	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpFile.Name(), err)
	}

	if err = os.Rename(tmpFile.Name(), authKeysFile); err != nil {
		return fmt.Errorf("replacing %s: %w", authKeysFile, err)
	}

	return nil
}
