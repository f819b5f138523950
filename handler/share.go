package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	C "github.com/Mu-L/chartbrew/config"
	mid "github.com/Mu-L/chartbrew/middleware"
	M "github.com/Mu-L/chartbrew/model/model"
	"github.com/Mu-L/chartbrew/model/store"
	"github.com/Mu-L/chartbrew/token"
	U "github.com/Mu-L/chartbrew/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

type SharePolicyParams struct {
	Visibility       string   `json:"visibility"`
	AllowedVariables []string `json:"allowed_variables"`
}

const defaultShareTokenTTL = 30 * 24 * time.Hour

// CreateSharePolicyHandler creates the share policy for a project, or
// returns the existing one. Gated by RequireProjectAdmin.
func CreateSharePolicyHandler(c *gin.Context) {
	projectID := U.GetScopeByKeyAsUint64(c, mid.SCOPE_PROJECT_ID)
	if projectID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Create share policy failed. Invalid project."})
		return
	}
	logCtx := log.WithField("project_id", projectID)

	// An empty body creates the default restricted policy.
	var params SharePolicyParams
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&params); err != nil && err != io.EOF {
		logCtx.WithError(err).Error("Create share policy failed. Json decode failed.")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload."})
		return
	}

	if params.Visibility == "" {
		params.Visibility = M.SharePolicyVisibilityRestricted
	}
	if !M.ValidShareVisibilities[params.Visibility] {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid visibility."})
		return
	}

	if existing, errCode := store.GetStore().GetSharePolicy(M.SharePolicyEntityProject, projectID); errCode == http.StatusFound {
		c.JSON(http.StatusOK, existing)
		return
	}

	policy := &M.SharePolicy{
		ID:         uuid.New().String(),
		EntityType: M.SharePolicyEntityProject,
		EntityID:   projectID,
		Visibility: params.Visibility,
	}
	if len(params.AllowedVariables) > 0 {
		raw, err := json.Marshal(params.AllowedVariables)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid allowed variables."})
			return
		}
		policy.AllowedVariables = &postgres.Jsonb{RawMessage: raw}
	}

	created, errCode := store.GetStore().CreateSharePolicy(policy)
	if errCode != http.StatusCreated {
		c.AbortWithStatusJSON(errCode, gin.H{"error": "Create share policy failed."})
		return
	}

	c.JSON(http.StatusOK, created)
}

// GenerateShareTokenHandler mints a structured share token and the share URL
// for a project. Gated by RequireProjectAdmin.
func GenerateShareTokenHandler(c *gin.Context) {
	projectID := U.GetScopeByKeyAsUint64(c, mid.SCOPE_PROJECT_ID)
	if projectID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Generate share token failed. Invalid project."})
		return
	}
	logCtx := log.WithField("project_id", projectID)

	project, errCode := store.GetStore().GetProjectByID(projectID)
	if errCode != http.StatusFound {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	ttl := defaultShareTokenTTL
	if configured := C.GetConfig().ShareTokenTTLInSeconds; configured > 0 {
		ttl = time.Duration(configured) * time.Second
	}

	shareToken, err := token.GenerateShareToken(projectID, C.GetEncryptionKey(), ttl)
	if err != nil {
		logCtx.WithError(err).Error("Failed to sign share token.")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Generate share token failed."})
		return
	}

	url := fmt.Sprintf("%s/b/%s?token=%s", C.GetConfig().AppDomain, project.BrewName, shareToken)
	c.JSON(http.StatusOK, gin.H{"token": shareToken, "url": url})
}
