// Package policy gates uploaded files through an OPA policy document before
// extraction.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.upload_policy.decision"),
		rego.Module("upload_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// UploadInput is the policy input for one attachment.
type UploadInput struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	MaxBytes  int64  `json:"max_bytes"`
}

// Evaluate checks the upload policy for one attachment.
// Returns: decision ("allow" or "deny"), error.
func (e *Engine) Evaluate(ctx context.Context, input UploadInput) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result set means the
		// document itself is malformed, so fail open.
		return "allow", nil
	}

	if s, isString := results[0].Expressions[0].Value.(string); isString {
		return s, nil
	}
	return "allow", nil
}

// DefaultPolicy is the default upload policy content: everything is allowed
// except executables and files over the configured size cap.
const DefaultPolicy = `
package upload_policy

default decision = "allow"

decision = "deny" {
	endswith(lower(input.filename), ".exe")
}

decision = "deny" {
	endswith(lower(input.filename), ".dll")
}

decision = "deny" {
	input.max_bytes > 0
	input.size_bytes > input.max_bytes
}
`
