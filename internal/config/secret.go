package config

import (
	"encoding/json"
	"os"
	"strings"
)

type Secret string

// String reassembles the Secret into a valid string.
//
//goland:noinspection GoMixedReceiverTypes
func (secret Secret) String() string {
	return string(secret)
}

// MarshalText implements the [encoding.TextMarshaler] interface for Secret.
//
//goland:noinspection GoMixedReceiverTypes
func (secret Secret) MarshalText() ([]byte, error) {
	return []byte(secret), nil
}

// MarshalJSON redacts the secret so [Config.String] output stays safe to log.
//
//goland:noinspection GoMixedReceiverTypes
func (secret Secret) MarshalJSON() ([]byte, error) {
	if secret == "" {
		return json.Marshal("")
	}

	return json.Marshal("***") //nolint:wrapcheck
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface for
// Secret. Values starting with file:// are read from the referenced file.
//
//goland:noinspection GoMixedReceiverTypes
func (secret *Secret) UnmarshalText(text []byte) error {
	stringText := string(text)
	if !strings.HasPrefix(stringText, "file://") {
		*secret = Secret(stringText)

		return nil
	}

	body, err := os.ReadFile(strings.TrimPrefix(stringText, "file://"))
	if err != nil {
		return err //nolint:wrapcheck
	}

	*secret = Secret(strings.TrimSpace(string(body)))

	return nil
}
