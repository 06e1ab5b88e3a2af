package types

import (
	"fmt"
	"strings"
)

// ProvisionMode defines whether provisioned accounts receive elevated
// privileges.
type ProvisionMode int

const (
	ProvisionModeNone ProvisionMode = iota
	ProvisionModeSudoer
)

// String returns the string representation of the provision mode.
//
//goland:noinspection GoMixedReceiverTypes
func (m ProvisionMode) String() string {
	text, err := m.MarshalText()
	if err != nil {
		panic(err)
	}

	return string(text)
}

// MarshalText implements the [encoding.TextMarshaler] interface.
//
//goland:noinspection GoMixedReceiverTypes
func (m ProvisionMode) MarshalText() ([]byte, error) {
	switch m {
	case ProvisionModeNone:
		return []byte("none"), nil
	case ProvisionModeSudoer:
		return []byte("sudoer"), nil
	default:
		return nil, fmt.Errorf("unknown identifier %d", m)
	}
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
//
//goland:noinspection GoMixedReceiverTypes
func (m *ProvisionMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none", "":
		*m = ProvisionModeNone
	case "sudoer":
		*m = ProvisionModeSudoer
	default:
		return fmt.Errorf("invalid value %s", string(text))
	}

	return nil
}
