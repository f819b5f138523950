package postgres

import (
	"net/http"

	C "github.com/Mu-L/chartbrew/config"
	"github.com/Mu-L/chartbrew/model/model"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// GetProjectByBrewName fetches a dashboard by its public slug with the chart
// graph preloaded.
func (pg *Postgres) GetProjectByBrewName(brewName string) (*model.Project, int) {
	if brewName == "" {
		return nil, http.StatusBadRequest
	}

	var project model.Project
	db := C.GetServices().Db
	if err := db.Preload("Charts", "is_deleted = ?", false).
		Preload("Charts.DataRequests").
		Where("brew_name = ?", brewName).
		First(&project).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithField("brew_name", brewName).WithError(err).Error("GetProjectByBrewName failed")
		return nil, http.StatusInternalServerError
	}
	return &project, http.StatusFound
}

func (pg *Postgres) GetProjectByID(projectID uint64) (*model.Project, int) {
	if projectID == 0 {
		return nil, http.StatusBadRequest
	}

	var project model.Project
	db := C.GetServices().Db
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithField("project_id", projectID).WithError(err).Error("GetProjectByID failed")
		return nil, http.StatusInternalServerError
	}
	return &project, http.StatusFound
}

// GetTeamRole returns the user's role on a team, StatusNotFound when the
// user holds none.
func (pg *Postgres) GetTeamRole(teamID uint64, userID string) (*model.TeamRole, int) {
	if teamID == 0 || userID == "" {
		return nil, http.StatusBadRequest
	}

	var teamRole model.TeamRole
	db := C.GetServices().Db
	if err := db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&teamRole).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithFields(log.Fields{"team_id": teamID, "user_id": userID}).WithError(err).Error("GetTeamRole failed")
		return nil, http.StatusInternalServerError
	}
	return &teamRole, http.StatusFound
}
