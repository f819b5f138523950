package model

import (
	"net/url"
)

// Variable is a single dashboard variable value. Values stay opaque strings;
// typed coercion is the responsibility of the chart's variable bindings.
type Variable struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

const (
	VariableTypeString  = "string"
	VariableTypeNumber  = "number"
	VariableTypeBoolean = "boolean"
	VariableTypeDate    = "date"
)

// VariableSet maps variable names to values.
type VariableSet map[string]Variable

// Control-plane query parameters, never treated as dashboard variables.
var reservedQueryParams = map[string]bool{
	"token":       true,
	"pass":        true,
	"accessToken": true,
}

// ExtractVariablesFromQuery turns the request query into a variable set.
// Every non-reserved key is a candidate variable; only the first value of a
// repeated key is kept. An empty query yields an empty set, not an error.
func ExtractVariablesFromQuery(query url.Values) VariableSet {
	variables := make(VariableSet)
	for name, values := range query {
		if reservedQueryParams[name] || len(values) == 0 {
			continue
		}
		variables[name] = Variable{Value: values[0], Type: VariableTypeString}
	}
	return variables
}

// MergeVariablesWithPolicy drops variables whose name is not on the policy
// allow-list. A nil policy or an absent allow-list passes everything through.
// Dropped variables are discarded silently.
func MergeVariablesWithPolicy(variables VariableSet, policy *SharePolicy) VariableSet {
	if policy == nil {
		return variables
	}

	allowed := policy.AllowedVariableNames()
	if len(allowed) == 0 {
		return variables
	}

	allowedNames := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedNames[name] = true
	}

	merged := make(VariableSet)
	for name, variable := range variables {
		if allowedNames[name] {
			merged[name] = variable
		}
	}
	return merged
}
