package config

import (
	"flag"
	"io"
	"strings"
)

// FlagSet returns a flag.FlagSet mirroring the koanf configuration keys.
// Defaults come from [Defaults]; precedence over file values is handled by
// the basicflag provider in [Load].
func FlagSet(name string, writer io.Writer) *flag.FlagSet {
	conf := Defaults

	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(writer)

	flagSet.String("config", "", "path to one .yaml config file")
	flagSet.Bool("version", false, "show version")

	flagSet.String("log.format", conf.Log.Format,
		"log format. json or console")
	flagSet.TextVar(&conf.Log.Level, "log.level", conf.Log.Level,
		"log level. Can be one of: debug, info, warn, error")

	flagSet.String("http.ca", conf.HTTP.CAFile,
		"Path to a PEM bundle with additional CA certificates. Useful for GitHub Enterprise behind a private CA.")
	flagSet.Duration("http.timeout", conf.HTTP.Timeout,
		"timeout for a single request against GitHub")

	flagSet.String("oauth2.client.id", conf.OAuth2.Client.ID,
		"oauth2 client id of the GitHub App or OAuth App")
	flagSet.TextVar(&conf.OAuth2.Client.Secret, "oauth2.client.secret", conf.OAuth2.Client.Secret,
		"optional oauth2 client secret, sent on token polls. If argument starts with file:// it reads the secret from a file.")
	flagSet.String("oauth2.scopes", strings.Join(conf.OAuth2.Scopes, ","),
		"oauth2 token scopes. Comma separated list.")
	flagSet.TextVar(&conf.OAuth2.Endpoints.DeviceAuth, "oauth2.endpoint.device-auth", conf.OAuth2.Endpoints.DeviceAuth,
		"custom device authorization endpoint. Requires oauth2.endpoint.token.")
	flagSet.TextVar(&conf.OAuth2.Endpoints.Token, "oauth2.endpoint.token", conf.OAuth2.Endpoints.Token,
		"custom token endpoint. Requires oauth2.endpoint.device-auth.")

	flagSet.TextVar(&conf.GitHub.APIURL, "github.api-url", conf.GitHub.APIURL,
		"base URL of the GitHub REST API")
	flagSet.String("github.organization", conf.GitHub.Organization,
		"GitHub organization the user must be a member of")
	flagSet.String("github.teams", strings.Join(conf.GitHub.Teams, ","),
		"team slugs inside the organization. If set, membership in at least one team is required. Comma separated list.")

	flagSet.Bool("auth.match-username", conf.Auth.MatchUsername,
		"require the requested login name to match the account name derived from the GitHub login")
	flagSet.Duration("auth.pending-timeout", conf.Auth.PendingTimeout,
		"overall deadline for one login attempt, including the device flow")
	flagSet.String("auth.validate.cel", conf.Auth.Validate.CEL,
		"CEL expression for custom authorization. The expression must evaluate to a boolean value. Example: orgMember && login != 'bot'")

	flagSet.Bool("provision.enabled", conf.Provision.Enabled,
		"create or update the local account after a successful authorization")
	flagSet.TextVar(&conf.Provision.Mode, "provision.mode", conf.Provision.Mode,
		"account mode. none or sudoer")
	flagSet.Bool("provision.import-keys", conf.Provision.ImportKeys,
		"offer to import the user's GitHub public keys into authorized_keys")
	flagSet.String("provision.home-dir", conf.Provision.HomeDir,
		"base directory for home directories of provisioned accounts")
	flagSet.String("provision.shell", conf.Provision.Shell,
		"login shell for provisioned accounts")
	flagSet.String("provision.sudoers-dir", conf.Provision.SudoersDir,
		"directory for per-account sudoers files")

	return flagSet
}
