package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectSanitized(t *testing.T) {
	project := projectWithCharts(t)

	sanitized := project.Sanitized()
	assert.Equal(t, "", sanitized.Password)
	assert.Equal(t, "stored-password", project.Password)
	assert.Equal(t, project.ID, sanitized.ID)
	assert.Len(t, sanitized.Charts, len(project.Charts))

	// The copy must not alias the stored chart graph.
	sanitized.Charts[0].DataRequests[0].Route = "mutated"
	assert.NotEqual(t, "mutated", project.Charts[0].DataRequests[0].Route)
}

func TestProjectCheckPassword(t *testing.T) {
	project := &Project{PasswordProtected: true, Password: "opensesame"}

	assert.True(t, project.CheckPassword("opensesame"))
	assert.False(t, project.CheckPassword("wrong"))
	assert.False(t, project.CheckPassword(""))

	// Degenerate legacy rows with an empty stored password accept an
	// empty pass.
	empty := &Project{PasswordProtected: true}
	assert.True(t, empty.CheckPassword(""))
	assert.False(t, empty.CheckPassword("anything"))
}

func TestTeamRoleIsAdmin(t *testing.T) {
	assert.True(t, (&TeamRole{Role: RoleTeamOwner}).IsAdmin())
	assert.True(t, (&TeamRole{Role: RoleTeamAdmin}).IsAdmin())
	assert.True(t, (&TeamRole{Role: RoleProjectAdmin}).IsAdmin())
	assert.False(t, (&TeamRole{Role: RoleProjectViewer}).IsAdmin())
}
