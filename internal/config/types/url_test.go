package types_test

import (
	"testing"

	"github.com/jkroepke/pam-auth-github/internal/config/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	t.Parallel()

	var u types.URL

	assert.True(t, u.IsEmpty())
	assert.Empty(t, u.String())

	require.NoError(t, u.UnmarshalText([]byte("https://api.github.com")))
	assert.False(t, u.IsEmpty())
	assert.Equal(t, "https://api.github.com", u.String())

	assert.Equal(t, "https://api.github.com/orgs/acme", u.JoinPath("orgs", "acme").String())
	// JoinPath must not mutate the receiver.
	assert.Equal(t, "https://api.github.com", u.String())

	require.NoError(t, u.UnmarshalText(nil))
	assert.True(t, u.IsEmpty())
}
