package model

import (
	"encoding/json"
	"testing"

	"github.com/jinzhu/gorm/dialects/postgres"
	"github.com/stretchr/testify/assert"
)

func jsonb(t *testing.T, v interface{}) postgres.Jsonb {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return postgres.Jsonb{RawMessage: raw}
}

func projectWithCharts(t *testing.T) *Project {
	return &Project{
		ID:       7,
		BrewName: "sales-board",
		Public:   true,
		Password: "stored-password",
		Charts: []Chart{
			{
				ID: 1, ProjectID: 7, Name: "Revenue",
				DataRequests: []DataRequest{{
					ID:      10,
					ChartID: 1,
					Route:   "https://api.example.com/revenue?from={{start_date}}&to={{end_date}}",
					Method:  "GET",
					Headers: jsonb(t, map[string]string{"X-Region": "{{region}}"}),
					Body:    `{"granularity": "{{granularity}}"}`,
				}},
			},
			{
				ID: 2, ProjectID: 7, Name: "Signups",
				DataRequests: []DataRequest{{
					ID:      20,
					ChartID: 2,
					Route:   "https://api.example.com/signups?since={{start_date}}",
					Method:  "GET",
				}},
			},
		},
	}
}

func TestApplyVariablesToCharts(t *testing.T) {
	project := projectWithCharts(t)
	variables := VariableSet{
		"start_date": {Value: "2024-01-01", Type: VariableTypeString},
		"region":     {Value: "eu", Type: VariableTypeString},
	}

	updated, err := ApplyVariablesToCharts(project, variables)
	assert.NoError(t, err)

	first := updated.Charts[0].DataRequests[0]
	assert.Equal(t, "https://api.example.com/revenue?from=2024-01-01&to={{end_date}}", first.Route)

	var headers map[string]string
	assert.NoError(t, json.Unmarshal(first.Headers.RawMessage, &headers))
	assert.Equal(t, "eu", headers["X-Region"])

	// Unmatched placeholders stay intact.
	assert.Contains(t, first.Body, "{{granularity}}")

	second := updated.Charts[1].DataRequests[0]
	assert.Equal(t, "https://api.example.com/signups?since=2024-01-01", second.Route)
}

func TestApplyVariablesToChartsDoesNotMutateOriginal(t *testing.T) {
	project := projectWithCharts(t)
	originalRoute := project.Charts[0].DataRequests[0].Route

	_, err := ApplyVariablesToCharts(project, VariableSet{
		"start_date": {Value: "2024-01-01"},
	})
	assert.NoError(t, err)
	assert.Equal(t, originalRoute, project.Charts[0].DataRequests[0].Route)
}

func TestApplyVariablesToChartsBindingDefaults(t *testing.T) {
	fallback := "2024-01-01"
	project := &Project{
		ID: 7,
		Charts: []Chart{{
			ID: 1,
			DataRequests: []DataRequest{{
				ID:    10,
				Route: "https://api.example.com/revenue?from={{start_date}}",
				VariableBindings: &postgres.Jsonb{RawMessage: mustMarshal(t, []VariableBinding{
					{Name: "start_date", Type: VariableTypeDate, Required: true, Default: &fallback},
				})},
			}},
		}},
	}

	updated, err := ApplyVariablesToCharts(project, VariableSet{})
	assert.NoError(t, err)
	assert.Equal(t, "https://api.example.com/revenue?from=2024-01-01", updated.Charts[0].DataRequests[0].Route)
	assert.Empty(t, updated.Charts[0].DataRequests[0].BindingError)
}

func TestApplyVariablesToChartsPartialFailure(t *testing.T) {
	project := &Project{
		ID: 7,
		Charts: []Chart{
			{
				ID: 1,
				DataRequests: []DataRequest{{
					ID:    10,
					Route: "https://api.example.com/revenue?from={{start_date}}",
					VariableBindings: &postgres.Jsonb{RawMessage: mustMarshal(t, []VariableBinding{
						{Name: "start_date", Type: VariableTypeDate, Required: true},
					})},
				}},
			},
			{
				ID: 2,
				DataRequests: []DataRequest{{
					ID:    20,
					Route: "https://api.example.com/signups?region={{region}}",
				}},
			},
		},
	}

	updated, err := ApplyVariablesToCharts(project, VariableSet{
		"region": {Value: "eu", Type: VariableTypeString},
	})
	assert.NoError(t, err)

	// The offending chart reports a binding error and stays
	// unsubstituted; the sibling chart resolves.
	failed := updated.Charts[0].DataRequests[0]
	assert.NotEmpty(t, failed.BindingError)
	assert.Contains(t, failed.BindingError, "start_date")
	assert.Contains(t, failed.Route, "{{start_date}}")

	resolved := updated.Charts[1].DataRequests[0]
	assert.Empty(t, resolved.BindingError)
	assert.Equal(t, "https://api.example.com/signups?region=eu", resolved.Route)
}

func TestApplyVariablesToChartsMalformedBindings(t *testing.T) {
	project := &Project{
		ID: 7,
		Charts: []Chart{{
			ID: 1,
			DataRequests: []DataRequest{{
				ID:               10,
				Route:            "https://api.example.com/revenue",
				VariableBindings: &postgres.Jsonb{RawMessage: json.RawMessage(`{"not": "an array"`)},
			}},
		}},
	}

	_, err := ApplyVariablesToCharts(project, VariableSet{"x": {Value: "1"}})
	assert.Error(t, err)
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return raw
}
