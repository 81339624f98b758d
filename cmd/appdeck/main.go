package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/appdeck/appdeck/internal/config"
	"github.com/appdeck/appdeck/internal/db"
	"github.com/appdeck/appdeck/internal/http/api"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the API server.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("appdeck", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 8080, "server port (config file takes precedence)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	configPath := config.ResolveConfigPath(*cfgPath)
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	if cfg.Port <= 0 {
		cfg.Port = *port
	}
	if errValidate := validatePort(cfg.Port); errValidate != nil {
		return errValidate
	}

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.RegisterRoutes(engine, conn, cfg.JWT)

	log.Infof("starting appdeck on port %d with config=%s", cfg.Port, configPath)
	return engine.Run(fmt.Sprintf(":%d", cfg.Port))
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
