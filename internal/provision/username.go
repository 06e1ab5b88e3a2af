package provision

import (
	"strings"

	"golang.org/x/text/cases"
)

// DeriveUsername maps a GitHub login onto a local account name. The login
// is case-folded, runes outside the portable account-name charset become
// '-', and a 'g-' prefix keeps the name valid when it would not start
// with a letter or underscore. Same login, same name, always.
func DeriveUsername(login string) string {
	folded := cases.Fold().String(login)

	var name strings.Builder

	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			name.WriteRune(r)
		default:
			name.WriteRune('-')
		}
	}

	username := name.String()
	if username == "" || !isNameStart(username[0]) {
		return "g-" + username
	}

	return username
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || c == '_'
}
