package model

import (
	"crypto/subtle"
	"time"

	"github.com/jinzhu/copier"
	"github.com/jinzhu/gorm/dialects/postgres"
)

// Project is a dashboard. JSON field names follow the legacy API contract,
// including the sequelize-style Charts association key.
type Project struct {
	ID     uint64 `gorm:"primary_key:true" json:"id"`
	TeamID uint64 `gorm:"not null" json:"team_id"`
	Name   string `gorm:"not null" json:"name"`
	// An index created on brew_name. Public slug of the dashboard.
	BrewName          string    `gorm:"size:255" json:"brewName"`
	Public            bool      `gorm:"not null;default:false" json:"public"`
	PasswordProtected bool      `gorm:"not null;default:false" json:"passwordProtected"`
	Password          string    `json:"password"`
	DashboardTitle    string    `json:"dashboardTitle"`
	Logo              string    `json:"logo"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Charts []Chart `gorm:"foreignkey:ProjectID" json:"Charts"`
}

type Chart struct {
	ID        uint64    `gorm:"primary_key:true" json:"id"`
	ProjectID uint64    `gorm:"not null" json:"project_id"`
	Name      string    `gorm:"not null" json:"name"`
	Type      string    `gorm:"type:varchar(20)" json:"type"`
	IsDeleted bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DataRequests []DataRequest `gorm:"foreignkey:ChartID" json:"DataRequests"`
}

// DataRequest holds the outbound request configuration of a chart. Route,
// header values and body may carry {{variable}} placeholders.
type DataRequest struct {
	ID      uint64 `gorm:"primary_key:true" json:"id"`
	ChartID uint64 `gorm:"not null" json:"chart_id"`
	Route   string `json:"route"`
	Method  string `gorm:"type:varchar(10)" json:"method"`
	// JSON object of header name to value.
	Headers postgres.Jsonb `json:"headers"`
	Body    string         `json:"body"`
	// JSON array of VariableBinding.
	VariableBindings *postgres.Jsonb `json:"variable_bindings"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Set on substituted copies when a required binding had no value.
	// Never persisted.
	BindingError string `gorm:"-" json:"binding_error,omitempty"`
}

// VariableBinding declares a variable a data request expects.
type VariableBinding struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Required bool    `json:"required"`
	Default  *string `json:"default"`
}

type TeamRole struct {
	ID     uint64 `gorm:"primary_key:true" json:"id"`
	TeamID uint64 `gorm:"not null" json:"team_id"`
	// Foreign key user_id -> users(uuid).
	UserID string `gorm:"not null;type:varchar(255)" json:"user_id"`
	Role   string `gorm:"not null;type:varchar(50)" json:"role"`
	// JSON array of project ids the role is limited to. Empty for
	// team-wide roles.
	Projects  *postgres.Jsonb `json:"projects"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const (
	RoleTeamOwner     = "teamOwner"
	RoleTeamAdmin     = "teamAdmin"
	RoleProjectAdmin  = "projectAdmin"
	RoleProjectEditor = "projectEditor"
	RoleProjectViewer = "projectViewer"
)

// IsAdmin reports whether the role may manage share policies and tokens.
func (t *TeamRole) IsAdmin() bool {
	return t.Role == RoleTeamOwner || t.Role == RoleTeamAdmin || t.Role == RoleProjectAdmin
}

// CheckPassword compares a supplied password against the stored one in
// constant time. Strict equality, matching the legacy API: a protected
// project whose stored password is empty accepts an empty pass.
func (p *Project) CheckPassword(pass string) bool {
	return subtle.ConstantTimeCompare([]byte(pass), []byte(p.Password)) == 1
}

// Sanitized returns a deep copy of the project with the password cleared.
// The stored project is never mutated, so the processed and full response
// variants cannot alias each other.
func (p *Project) Sanitized() *Project {
	var sanitized Project
	if err := copier.CopyWithOption(&sanitized, p, copier.Option{DeepCopy: true}); err != nil {
		// Copy of a plain struct graph cannot fail. Fall back to a
		// shallow copy with the password cleared.
		sanitized = *p
	}
	sanitized.Password = ""
	return &sanitized
}
