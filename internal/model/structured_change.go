package model

import "github.com/invopop/jsonschema"

type Complexity string

const (
	ComplexityTrivial Complexity = "trivial"
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
)

func (c Complexity) Ptr() *Complexity {
	return &c
}

// StructuredChange is the LLM's normalisation of a free-text request.
// Every property is present in the generated schema (strict mode requires it);
// RiskNotes may be empty and EstimatedComplexity may be null, which both read
// as "not provided".
type StructuredChange struct {
	Scope               string      `json:"scope" validate:"required" jsonschema_description:"The specific component or area being changed, for example Hero section CTA button"`
	ExpectedChange      string      `json:"expectedChange" validate:"required" jsonschema_description:"Detailed, implementable description of the change"`
	AcceptanceCriteria  []string    `json:"acceptanceCriteria" validate:"required,min=1,dive,required" jsonschema_description:"Testable criteria for PR approval"`
	RiskNotes           []string    `json:"riskNotes" validate:"omitempty,dive,required" jsonschema_description:"Potential side effects or concerns"`
	EstimatedComplexity *Complexity `json:"estimatedComplexity" validate:"omitnil,oneof=trivial low medium high" jsonschema:"enum=trivial,enum=low,enum=medium,enum=high" jsonschema_description:"Rough effort estimate, null when it cannot be judged"`
}

// JSONSchemaExtend lets the model answer null for the complexity. Strict
// structured output accepts anyOf but not the oneOf a nullable tag produces.
func (StructuredChange) JSONSchemaExtend(s *jsonschema.Schema) {
	prop, ok := s.Properties.Get("estimatedComplexity")
	if !ok {
		return
	}
	s.Properties.Set("estimatedComplexity", &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{prop, {Type: "null"}},
	})
}
