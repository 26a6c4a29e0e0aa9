package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/hawktesters/portal/internal/app"
	"github.com/hawktesters/portal/internal/config"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and dispatches to the requested command.
func run(args []string) error {
	if errEnv := godotenv.Load(); errEnv != nil && !os.IsNotExist(errEnv) {
		log.WithError(errEnv).Warn("load .env failed")
	}
	configureLogging()

	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 8318, "server port")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(*cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch fs.Arg(0) {
	case "migrate":
		return app.Migrate(ctx, appCfg)
	case "seed":
		return app.Seed(appCfg,
			os.Getenv("SEED_ADMIN_EMAIL"),
			os.Getenv("SEED_ADMIN_PASSWORD"),
			os.Getenv("SEED_VIEWER_EMAIL"),
		)
	case "":
		return app.RunServer(ctx, appCfg, *port)
	default:
		return fmt.Errorf("unknown command: %s", fs.Arg(0))
	}
}

// configureLogging sets up structured logging from the LOG_LEVEL env.
func configureLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	level, errLevel := log.ParseLevel(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if errLevel != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
