// Package policy decides whether the receiving application admits a decoded
// run request. Rules are written in Rego and evaluated with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Denial reasons produced by DefaultPolicy.
const (
	ReasonAdmitted        = "admitted"
	ReasonUnitUnavailable = "unit_unavailable"
	ReasonStageNotAllowed = "stage_not_allowed"
	ReasonTimeBudget      = "insufficient_time_budget"
)

// Input is the document a policy sees as `input`.
type Input struct {
	UnitID                    string   `json:"unit_id"`
	UnitAvailable             bool     `json:"unit_available"`
	Stage                     string   `json:"stage"`
	AllowedStages             []string `json:"allowed_stages"`
	HasTimeBudget             bool     `json:"has_time_budget"`
	RemainingForegroundTimeMs int64    `json:"remaining_foreground_time_ms"`
	MinForegroundTimeMs       int64    `json:"min_foreground_time_ms"`
}

// Decision is the policy's verdict.
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares policyContent, which must define
// data.launch_policy.decision.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.launch_policy.decision"),
		rego.Module("launch_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the policy against input. A policy that produces no decision
// denies.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	if input.AllowedStages == nil {
		input.AllowedStages = []string{}
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Allow: false, Reason: "no decision"}, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("unexpected decision type %T", results[0].Expressions[0].Value)
	}
	allow, ok := obj["allow"].(bool)
	if !ok {
		return Decision{}, fmt.Errorf("decision is missing a boolean allow")
	}
	reason, _ := obj["reason"].(string)
	return Decision{Allow: allow, Reason: reason}, nil
}

// DefaultPolicy admits a request when the unit is in the catalog, the stage
// is listed and any time budget meets the minimum. The first failing check
// names the denial.
const DefaultPolicy = `
package launch_policy

default decision := {"allow": true, "reason": "admitted"}

decision := {"allow": false, "reason": "unit_unavailable"} if {
	not input.unit_available
} else := {"allow": false, "reason": "stage_not_allowed"} if {
	not stage_allowed
} else := {"allow": false, "reason": "insufficient_time_budget"} if {
	input.has_time_budget
	input.remaining_foreground_time_ms < input.min_foreground_time_ms
}

stage_allowed if {
	some s in input.allowed_stages
	s == input.stage
}
`
