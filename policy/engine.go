package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

const (
	// DecisionAllow lets the AI action proceed.
	DecisionAllow = "allow"
	// DecisionBlock rejects the AI action.
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// UsageInput is the document the AI usage policy is evaluated against.
type UsageInput struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
	Count  int    `json:"count"`
	Limit  int    `json:"limit"`
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.ai_policy.decision"),
		rego.Module("ai_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the AI usage policy.
// Returns: decision (allow, block), reason (optional), error
func (e *Engine) Evaluate(ctx context.Context, input UsageInput) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"user_id": input.UserID,
		"plan":    input.Plan,
		"count":   input.Count,
		"limit":   input.Limit,
	}))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	// Policies are expected to define a default; an undefined result blocks.
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionBlock, "undefined decision", nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return val, "", nil
	case map[string]any:
		decision, _ := val["decision"].(string)
		reason, _ := val["reason"].(string)
		if decision == "" {
			return DecisionBlock, "missing decision", nil
		}
		return decision, reason, nil
	default:
		return DecisionBlock, "unexpected return type", nil
	}
}

// DefaultPolicy allows AI usage while the monthly count is below the plan limit.
const DefaultPolicy = `
package ai_policy

import rego.v1

default decision := "block"

decision := "allow" if {
	input.count < input.limit
}
`
