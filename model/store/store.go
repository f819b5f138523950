package store

import (
	"github.com/Mu-L/chartbrew/model/model"
	storePostgres "github.com/Mu-L/chartbrew/model/store/postgres"
)

// Store is the persistence surface of the access-resolution flow. Methods
// return gorm results paired with an http status code, StatusFound /
// StatusCreated on success.
type Store interface {
	GetProjectByBrewName(brewName string) (*model.Project, int)
	GetProjectByID(projectID uint64) (*model.Project, int)
	GetTeamRole(teamID uint64, userID string) (*model.TeamRole, int)
	GetSharePolicy(entityType string, entityID uint64) (*model.SharePolicy, int)
	CreateSharePolicy(policy *model.SharePolicy) (*model.SharePolicy, int)
}

var store Store

// GetStore returns the configured store implementation.
func GetStore() Store {
	if store == nil {
		store = &storePostgres.Postgres{}
	}
	return store
}

// SetStore overrides the store implementation. Used by tests.
func SetStore(s Store) {
	store = s
}
