package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

// ApplyVariablesToCharts substitutes {{name}} placeholders in every chart's
// data request configuration and returns a new project copy. The stored
// project is never mutated.
//
// A data request whose required binding has no value (neither supplied nor
// defaulted) gets its BindingError set and is skipped; the other charts are
// still substituted. Only a malformed configuration column fails the whole
// call, and callers degrade the response instead of failing the request.
func ApplyVariablesToCharts(project *Project, variables VariableSet) (*Project, error) {
	var updated Project
	if err := copier.CopyWithOption(&updated, project, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy project %d: %w", project.ID, err)
	}

	for ci := range updated.Charts {
		chart := &updated.Charts[ci]
		for di := range chart.DataRequests {
			request := &chart.DataRequests[di]

			resolved, missing, err := resolveBindings(request, variables)
			if err != nil {
				return nil, fmt.Errorf("chart %d: %w", chart.ID, err)
			}
			if missing != "" {
				request.BindingError = fmt.Sprintf("missing required variable %q", missing)
				log.WithFields(log.Fields{"project_id": project.ID,
					"chart_id": chart.ID, "variable": missing,
				}).Warn("Skipped data request with unbound required variable.")
				continue
			}

			request.Route = substitutePlaceholders(request.Route, resolved)
			request.Body = substitutePlaceholders(request.Body, resolved)
			if err := substituteHeaders(request, resolved); err != nil {
				return nil, fmt.Errorf("chart %d: %w", chart.ID, err)
			}
		}
	}

	return &updated, nil
}

// resolveBindings builds the effective variable values for one data request.
// Supplied variables win over binding defaults. Returns the name of the
// first required binding without a value, if any.
func resolveBindings(request *DataRequest, variables VariableSet) (map[string]string, string, error) {
	resolved := make(map[string]string, len(variables))
	for name, variable := range variables {
		resolved[name] = variable.Value
	}

	if request.VariableBindings == nil || request.VariableBindings.RawMessage == nil {
		return resolved, "", nil
	}

	var bindings []VariableBinding
	if err := json.Unmarshal(request.VariableBindings.RawMessage, &bindings); err != nil {
		return nil, "", fmt.Errorf("malformed variable bindings on data request %d: %w", request.ID, err)
	}

	for _, binding := range bindings {
		if _, supplied := resolved[binding.Name]; supplied {
			continue
		}
		if binding.Default != nil {
			resolved[binding.Name] = *binding.Default
			continue
		}
		if binding.Required {
			return nil, binding.Name, nil
		}
	}
	return resolved, "", nil
}

func substitutePlaceholders(s string, resolved map[string]string) string {
	if s == "" || !strings.Contains(s, "{{") {
		return s
	}

	// Unmatched placeholders are left intact.
	for name, value := range resolved {
		s = strings.ReplaceAll(s, "{{"+name+"}}", value)
	}
	return s
}

func substituteHeaders(request *DataRequest, resolved map[string]string) error {
	if request.Headers.RawMessage == nil {
		return nil
	}

	var headers map[string]string
	if err := json.Unmarshal(request.Headers.RawMessage, &headers); err != nil {
		return fmt.Errorf("malformed headers on data request %d: %w", request.ID, err)
	}

	for name, value := range headers {
		headers[name] = substitutePlaceholders(value, resolved)
	}

	raw, err := json.Marshal(headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers on data request %d: %w", request.ID, err)
	}
	request.Headers = postgres.Jsonb{RawMessage: raw}
	return nil
}
