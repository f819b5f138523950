package config

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"
)

const DEVELOPMENT = "development"

type DBConf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Configuration struct {
	Env    string `json:"env"`
	Port   int    `json:"port"`
	DBInfo DBConf `json:"db"`
	// Secret used for signing and verifying share and login tokens.
	EncryptionKey string `json:"encryption_key"`
	// Base URL of the dashboard app, used when building share links.
	AppDomain string `json:"app_domain"`
	// Lifetime of generated share tokens in seconds.
	ShareTokenTTLInSeconds int64 `json:"share_token_ttl_in_seconds"`
}

type Services struct {
	Db *gorm.DB
}

var configuration *Configuration = nil
var services *Services = nil

func initLogging() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

func initServices() error {
	db, err := gorm.Open("postgres", fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
		configuration.DBInfo.Host,
		configuration.DBInfo.Port,
		configuration.DBInfo.User,
		configuration.DBInfo.Name,
		configuration.DBInfo.Password))
	if err != nil {
		log.WithFields(log.Fields{"err": err}).Error("Failed Db Initialization")
		return err
	}

	// Connection pooling and logging.
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.LogMode(IsDevelopment())
	log.Info("Db Service initialized")

	services = &Services{Db: db}
	return nil
}

// Init loads the configuration and wires the services.
func Init(config *Configuration) error {
	if configuration != nil {
		return fmt.Errorf("config already initialized")
	}
	if config.EncryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}

	configuration = config
	initLogging()

	return initServices()
}

// InitTestConfig installs a configuration without connecting services.
// Used by tests.
func InitTestConfig(config *Configuration) {
	configuration = config
	initLogging()
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	return configuration.Env == DEVELOPMENT
}

func GetEncryptionKey() string {
	return configuration.EncryptionKey
}
