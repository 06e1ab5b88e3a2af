package authz_test

import (
	"testing"

	"github.com/jkroepke/pam-auth-github/internal/authz"
	"github.com/stretchr/testify/require"
)

func TestChecker(t *testing.T) {
	t.Parallel()

	facts := authz.Facts{Login: "octocat", UserID: 42, OrgMember: true, Teams: []string{"ops"}}

	for _, tt := range []struct {
		name string
		expr string
		err  error
	}{
		{name: "empty expression accepts", expr: ""},
		{name: "login match", expr: `login == "octocat"`},
		{name: "team membership", expr: `"ops" in teams`},
		{name: "numeric user id", expr: `userID >= 1`},
		{name: "combined", expr: `orgMember && login.startsWith("octo")`},
		{name: "false result", expr: `login == "hubot"`, err: authz.ErrCELValidationFailed},
		{name: "non-boolean result", expr: `login`, err: authz.ErrCELNoBooleanResult},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker, err := authz.NewChecker(tt.expr)
			require.NoError(t, err)

			err = checker.Check(facts)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestCheckerCompileError(t *testing.T) {
	t.Parallel()

	_, err := authz.NewChecker(`login ==`)
	require.ErrorContains(t, err, "failed to compile CEL expression")

	_, err = authz.NewChecker(`unknownVar == "x"`)
	require.ErrorContains(t, err, "failed to compile CEL expression")
}

func TestCheckerNilTeams(t *testing.T) {
	t.Parallel()

	checker, err := authz.NewChecker(`size(teams) == 0`)
	require.NoError(t, err)

	require.NoError(t, checker.Check(authz.Facts{Login: "octocat", OrgMember: true}))
}
