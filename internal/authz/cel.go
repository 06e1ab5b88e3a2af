package authz

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

var (
	ErrCELNoBooleanResult  = errors.New("CEL expression did not return a boolean")
	ErrCELValidationFailed = errors.New("CEL expression returned false")
)

// Checker evaluates the configured CEL expression against resolved
// identity facts. The expression is compiled once at construction.
type Checker struct {
	celEvalPrg cel.Program
}

// NewChecker compiles expr. An empty expression yields a checker that
// accepts everything.
func NewChecker(expr string) (*Checker, error) {
	if expr == "" {
		return &Checker{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("login", cel.StringType),
		cel.Variable("userID", cel.IntType),
		cel.Variable("orgMember", cel.BoolType),
		cel.Variable("teams", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	prg, issues := env.Compile(expr)
	if issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	evalPrg, err := env.Program(prg)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Checker{celEvalPrg: evalPrg}, nil
}

// Check evaluates the expression against facts.
func (c *Checker) Check(facts Facts) error {
	if c.celEvalPrg == nil {
		return nil
	}

	teams := facts.Teams
	if teams == nil {
		teams = []string{}
	}

	result, _, err := c.celEvalPrg.Eval(map[string]any{
		"login":     facts.Login,
		"userID":    facts.UserID,
		"orgMember": facts.OrgMember,
		"teams":     teams,
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	resultValue, ok := result.Value().(bool)
	if !ok {
		return ErrCELNoBooleanResult
	}

	if !resultValue {
		return ErrCELValidationFailed
	}

	return nil
}
