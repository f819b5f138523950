package handler

import (
	"net/http"

	"github.com/Mu-L/chartbrew/access"
	C "github.com/Mu-L/chartbrew/config"
	mid "github.com/Mu-L/chartbrew/middleware"
	M "github.com/Mu-L/chartbrew/model/model"
	"github.com/Mu-L/chartbrew/model/store"
	U "github.com/Mu-L/chartbrew/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GetPublicDashboardHandler serves GET /project/dashboard/:brewName. It
// loads the project and its share policy, runs the access decision engine
// and serializes the granted variant. The password field is empty in every
// success response.
func GetPublicDashboardHandler(c *gin.Context) {
	brewName := c.Params.ByName("brewName")
	logCtx := log.WithField("brew_name", brewName)

	project, errCode := store.GetStore().GetProjectByBrewName(brewName)
	if errCode == http.StatusNotFound {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Dashboard not found"})
		return
	}
	if errCode != http.StatusFound {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Cannot get the data"})
		return
	}
	logCtx = logCtx.WithField("project_id", project.ID)

	// Session identity is optional; the decision engine treats a missing
	// team role as an anonymous request.
	var teamRole *M.TeamRole
	if userID := U.GetScopeByKeyAsString(c, mid.SCOPE_LOGGED_IN_USER); userID != "" {
		role, errCode := store.GetStore().GetTeamRole(project.TeamID, userID)
		if errCode == http.StatusFound {
			teamRole = role
		} else if errCode != http.StatusNotFound {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Cannot get the data"})
			return
		}
	}

	var policy *M.SharePolicy
	policy, errCode = store.GetStore().GetSharePolicy(M.SharePolicyEntityProject, project.ID)
	if errCode == http.StatusNotFound {
		policy = nil
	} else if errCode != http.StatusFound {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Cannot get the data"})
		return
	}

	decision := access.Resolve(project, policy, &access.Request{
		TeamRole:    teamRole,
		AccessToken: c.Query("accessToken"),
		Token:       c.Query("token"),
		Pass:        c.Query("pass"),
		Variables:   M.ExtractVariablesFromQuery(c.Request.URL.Query()),
	}, C.GetEncryptionKey())

	if !decision.Granted {
		c.AbortWithStatusJSON(decision.Status, gin.H{"error": decision.Reason})
		return
	}

	if decision.Variant == access.VariantWithVars {
		updated, err := M.ApplyVariablesToCharts(project, decision.Variables)
		if err != nil {
			// Recoverable: serve the dashboard without substitution.
			logCtx.WithError(err).Error("Failed to apply variables to dashboard.")
			c.JSON(http.StatusOK, project.Sanitized())
			return
		}
		c.JSON(http.StatusOK, updated.Sanitized())
		return
	}

	// Full and processed variants serialize the same sanitized copy; team
	// members see the stored object otherwise untouched.
	c.JSON(http.StatusOK, project.Sanitized())
}
