package model

import (
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// SharePolicy controls public access to a single entity. At most one row per
// (entity_type, entity_id); absence of a row means legacy behavior, not a
// default policy.
type SharePolicy struct {
	ID         string `gorm:"primary_key:true;type:uuid" json:"id"`
	EntityType string `gorm:"not null;type:varchar(50)" json:"entity_type"`
	EntityID   uint64 `gorm:"not null" json:"entity_id"`
	Visibility string `gorm:"not null;type:varchar(20)" json:"visibility"`
	// JSON array of variable names allowed through on shared views.
	// Empty or absent means no filtering.
	AllowedVariables *postgres.Jsonb `json:"allowed_variables"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

const (
	SharePolicyVisibilityDisabled   = "disabled"
	SharePolicyVisibilityPublic     = "public"
	SharePolicyVisibilityRestricted = "restricted"
)

const SharePolicyEntityProject = "Project"

var ValidShareVisibilities = map[string]bool{
	SharePolicyVisibilityDisabled:   true,
	SharePolicyVisibilityPublic:     true,
	SharePolicyVisibilityRestricted: true,
}

// RequiresToken reports whether the policy tier demands a share token.
func (sp *SharePolicy) RequiresToken() bool {
	return sp.Visibility != SharePolicyVisibilityPublic
}

// AllowedVariableNames decodes the allow-list. A nil or malformed column
// yields nil, which callers treat as unrestricted.
func (sp *SharePolicy) AllowedVariableNames() []string {
	if sp.AllowedVariables == nil || sp.AllowedVariables.RawMessage == nil {
		return nil
	}

	var names []string
	if err := json.Unmarshal(sp.AllowedVariables.RawMessage, &names); err != nil {
		return nil
	}
	return names
}
