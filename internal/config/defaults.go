package config

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/config/types"
)

//nolint:gochecknoglobals
var Defaults = Config{
	Log: Log{
		Format: "console",
		Level:  slog.LevelInfo,
	},
	HTTP: HTTP{
		Timeout: 30 * time.Second,
	},
	OAuth2: OAuth2{
		Client: OAuth2Client{},
		Endpoints: OAuth2Endpoints{
			DeviceAuth: types.URL{},
			Token:      types.URL{},
		},
		Scopes: []string{"read:org"},
	},
	GitHub: GitHub{
		APIURL: types.URL{URL: &url.URL{
			Scheme: "https",
			Host:   "api.github.com",
		}},
		Teams: make([]string, 0),
	},
	Auth: Auth{
		MatchUsername:  true,
		PendingTimeout: 10 * time.Minute,
	},
	Provision: Provision{
		Enabled:    true,
		Mode:       types.ProvisionModeNone,
		ImportKeys: false,
		HomeDir:    "/home",
		Shell:      "/bin/bash",
		SudoersDir: "/etc/sudoers.d",
	},
}
