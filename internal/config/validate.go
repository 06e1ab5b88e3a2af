package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jkroepke/pam-auth-github/internal/config/types"
)

// Validate validates the config.
func Validate(conf Config) error {
	if conf.OAuth2.Client.ID == "" {
		return fmt.Errorf("oauth2.client.id is %w", ErrRequired)
	}

	if conf.GitHub.Organization == "" {
		return fmt.Errorf("github.organization is %w", ErrRequired)
	}

	if conf.GitHub.APIURL.IsEmpty() {
		return fmt.Errorf("github.api-url is %w", ErrRequired)
	}

	if err := validateURL(conf.GitHub.APIURL); err != nil {
		return fmt.Errorf("github.api-url: %w", err)
	}

	if err := validateEndpoints(conf.OAuth2.Endpoints); err != nil {
		return err
	}

	if slices.Contains(conf.GitHub.Teams, "") {
		return errors.New("github.teams contains an empty team slug")
	}

	if conf.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}

	if conf.Auth.PendingTimeout <= 0 {
		return errors.New("auth.pending-timeout must be positive")
	}

	return nil
}

// validateEndpoints enforces that custom endpoints are overridden in pairs,
// since mixing github.com with a custom instance never works.
func validateEndpoints(endpoints OAuth2Endpoints) error {
	if endpoints.DeviceAuth.IsEmpty() && endpoints.Token.IsEmpty() {
		return nil
	}

	if endpoints.DeviceAuth.IsEmpty() || endpoints.Token.IsEmpty() {
		return errors.New("both oauth2.endpoint.device-auth and oauth2.endpoint.token are required")
	}

	for key, value := range map[string]types.URL{
		"oauth2.endpoint.device-auth": endpoints.DeviceAuth,
		"oauth2.endpoint.token":       endpoints.Token,
	} {
		if err := validateURL(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

func validateURL(u types.URL) error {
	if !slices.Contains([]string{"http", "https"}, u.Scheme) {
		return errors.New("invalid URL. only http://addr or https://addr scheme supported")
	}

	return nil
}
