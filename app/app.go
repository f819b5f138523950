package main

import (
	"flag"
	"fmt"

	C "github.com/Mu-L/chartbrew/config"
	H "github.com/Mu-L/chartbrew/handler"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ./app --env=development --api_http_port=8080 --db_host=localhost --db_port=5432 --db_user=chartbrew --db_name=chartbrew --db_pass=chartbrew --encryption_key=secret --app_domain=http://localhost:3000
func main() {
	env := flag.String("env", "development", "")
	port := flag.Int("api_http_port", 8080, "")

	dbHost := flag.String("db_host", "localhost", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "chartbrew", "")
	dbName := flag.String("db_name", "chartbrew", "")
	dbPass := flag.String("db_pass", "chartbrew", "")

	encryptionKey := flag.String("encryption_key", "", "Secret for signing share and login tokens")
	appDomain := flag.String("app_domain", "http://localhost:3000", "")
	shareTokenTTL := flag.Int64("share_token_ttl", 0, "Share token lifetime in seconds")

	flag.Parse()

	config := &C.Configuration{
		Env:  *env,
		Port: *port,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
		EncryptionKey:          *encryptionKey,
		AppDomain:              *appDomain,
		ShareTokenTTLInSeconds: *shareTokenTTL,
	}

	if err := C.Init(config); err != nil {
		log.WithError(err).Fatal("Failed to initialize.")
	}

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	H.InitAppRoutes(r)

	log.WithField("port", config.Port).Info("Starting server.")
	if err := r.Run(fmt.Sprintf(":%d", config.Port)); err != nil {
		log.WithError(err).Fatal("Server exited.")
	}
}
