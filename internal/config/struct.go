package config

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/config/types"
)

type Config struct {
	ConfigFile string    `json:"config"    koanf:"config"`
	Log        Log       `json:"log"       koanf:"log"`
	HTTP       HTTP      `json:"http"      koanf:"http"`
	OAuth2     OAuth2    `json:"oauth2"    koanf:"oauth2"`
	GitHub     GitHub    `json:"github"    koanf:"github"`
	Auth       Auth      `json:"auth"      koanf:"auth"`
	Provision  Provision `json:"provision" koanf:"provision"`
	Version    bool      `json:"-"         koanf:"version"`
}

type Log struct {
	Format string     `json:"format" koanf:"format"`
	Level  slog.Level `json:"level"  koanf:"level"`
}

type HTTP struct {
	// CAFile points to a PEM bundle with additional trust roots, used when
	// a GitHub Enterprise instance sits behind a private CA.
	CAFile  string        `json:"ca"      koanf:"ca"`
	Timeout time.Duration `json:"timeout" koanf:"timeout"`
}

type OAuth2 struct {
	Client    OAuth2Client    `json:"client"   koanf:"client"`
	Endpoints OAuth2Endpoints `json:"endpoint" koanf:"endpoint"`
	Scopes    []string        `json:"scopes"   koanf:"scopes"`
}

type OAuth2Client struct {
	ID     string `json:"id"     koanf:"id"`
	Secret Secret `json:"secret" koanf:"secret"`
}

// OAuth2Endpoints overrides the device-code and token endpoints. Both must
// be set together; when empty, the public github.com endpoints are used.
type OAuth2Endpoints struct {
	DeviceAuth types.URL `json:"device-auth" koanf:"device-auth"`
	Token      types.URL `json:"token"       koanf:"token"`
}

type GitHub struct {
	APIURL       types.URL `json:"api-url"      koanf:"api-url"`
	Organization string    `json:"organization" koanf:"organization"`
	Teams        []string  `json:"teams"        koanf:"teams"`
}

type Auth struct {
	MatchUsername  bool          `json:"match-username"  koanf:"match-username"`
	PendingTimeout time.Duration `json:"pending-timeout" koanf:"pending-timeout"`
	Validate       AuthValidate  `json:"validate"        koanf:"validate"`
}

type AuthValidate struct {
	// CEL is an optional expression evaluated after the membership policy.
	// It must return a boolean. Variables: login, userID, orgMember, teams.
	CEL string `json:"cel" koanf:"cel"`
}

type Provision struct {
	Enabled    bool                `json:"enabled"     koanf:"enabled"`
	Mode       types.ProvisionMode `json:"mode"        koanf:"mode"`
	ImportKeys bool                `json:"import-keys" koanf:"import-keys"`
	HomeDir    string              `json:"home-dir"    koanf:"home-dir"`
	Shell      string              `json:"shell"       koanf:"shell"`
	SudoersDir string              `json:"sudoers-dir" koanf:"sudoers-dir"`
}

//goland:noinspection GoMixedReceiverTypes
func (c Config) String() string {
	jsonString, err := json.Marshal(c)
	if err != nil {
		panic(err)
	}

	return string(jsonString)
}
