// Package authz decides whether an authenticated GitHub identity may log
// in, based on organization membership, team membership and an optional
// CEL expression.
package authz

import "strings"

type Reason string

const (
	ReasonOrgMember     Reason = "org-member"
	ReasonTeamMember    Reason = "team-member"
	ReasonNotOrgMember  Reason = "not-org-member"
	ReasonNotTeamMember Reason = "not-team-member"
	ReasonIdentityError Reason = "identity-error"
)

// Facts is the resolved identity a decision is made from. Teams holds the
// slugs of the user's teams within the configured organization.
type Facts struct {
	Login     string
	UserID    int64
	OrgMember bool
	Teams     []string
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

// Decide applies the membership policy. Without configured teams any
// organization member passes, otherwise the user must be on at least one
// of the listed teams.
func Decide(facts Facts, requiredTeams []string) Decision {
	if !facts.OrgMember {
		return Decision{Allowed: false, Reason: ReasonNotOrgMember}
	}

	if len(requiredTeams) == 0 {
		return Decision{Allowed: true, Reason: ReasonOrgMember}
	}

	for _, required := range requiredTeams {
		for _, team := range facts.Teams {
			if strings.EqualFold(team, required) {
				return Decision{Allowed: true, Reason: ReasonTeamMember}
			}
		}
	}

	return Decision{Allowed: false, Reason: ReasonNotTeamMember}
}
