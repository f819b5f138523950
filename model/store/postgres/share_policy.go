package postgres

import (
	"net/http"

	C "github.com/Mu-L/chartbrew/config"
	"github.com/Mu-L/chartbrew/model/model"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
)

// GetSharePolicy returns the policy row for an entity. StatusNotFound means
// legacy behavior applies, not a default policy.
func (pg *Postgres) GetSharePolicy(entityType string, entityID uint64) (*model.SharePolicy, int) {
	if entityType == "" || entityID == 0 {
		return nil, http.StatusBadRequest
	}

	var policy model.SharePolicy
	db := C.GetServices().Db
	if err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).First(&policy).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}
		log.WithFields(log.Fields{"entity_type": entityType, "entity_id": entityID}).
			WithError(err).Error("GetSharePolicy failed")
		return nil, http.StatusInternalServerError
	}
	return &policy, http.StatusFound
}

func (pg *Postgres) CreateSharePolicy(policy *model.SharePolicy) (*model.SharePolicy, int) {
	if policy == nil || policy.EntityID == 0 || !model.ValidShareVisibilities[policy.Visibility] {
		return nil, http.StatusBadRequest
	}

	db := C.GetServices().Db
	if err := db.Create(policy).Error; err != nil {
		log.WithError(err).Error("CreateSharePolicy failed")
		return nil, http.StatusInternalServerError
	}
	return policy, http.StatusCreated
}
