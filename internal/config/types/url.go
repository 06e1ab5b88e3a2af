package types

import (
	"errors"
	"fmt"
	"net/url"
)

// URL wraps net/url.URL with text marshalling so it can be used in flags,
// YAML config and environment variables.
type URL struct {
	*url.URL
}

func NewURL(u string) (URL, error) {
	if u == "" {
		return URL{}, errors.New("empty URL")
	}

	stdURL, err := url.Parse(u)
	if err != nil {
		return URL{}, fmt.Errorf("failed to parse URL: %w", err)
	}

	return URL{stdURL}, nil
}

// IsEmpty checks if the URL is empty.
//
//goland:noinspection GoMixedReceiverTypes
func (u *URL) IsEmpty() bool {
	return u == nil || u.URL == nil || u.URL.String() == ""
}

// String returns the string representation of the URL.
//
//goland:noinspection GoMixedReceiverTypes
func (u URL) String() string {
	if u.IsEmpty() {
		return ""
	}

	return u.URL.String()
}

// JoinPath returns a copy of the URL with the given path elements joined.
//
//goland:noinspection GoMixedReceiverTypes
func (u URL) JoinPath(elem ...string) URL {
	if u.IsEmpty() {
		return u
	}

	return URL{u.URL.JoinPath(elem...)}
}

// MarshalText implements the [encoding.TextMarshaler] interface.
//
//goland:noinspection GoMixedReceiverTypes
func (u URL) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
//
//goland:noinspection GoMixedReceiverTypes
func (u *URL) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = URL{}

		return nil
	}

	parsedURL, err := NewURL(string(text))
	if err != nil {
		return err
	}

	*u = parsedURL

	return nil
}
