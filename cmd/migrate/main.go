package main

import (
	"fmt"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/physique-hub/internal/config"
	"github.com/fdg312/physique-hub/internal/dbmigrate"
	"github.com/fdg312/physique-hub/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: go run ./cmd/migrate [%s] [migrations-dir]\n", strings.Join(dbmigrate.Commands, "|"))
		os.Exit(2)
	}

	command := os.Args[1]
	if !dbmigrate.IsSupported(command) {
		fmt.Fprintf(os.Stderr, "unsupported command %q (allowed: %s)\n", command, strings.Join(dbmigrate.Commands, ", "))
		os.Exit(2)
	}

	// Пустой dir — встроенные в бинарник миграции
	var dir string
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg := config.Load()
	if err := logging.Init(cfg.LogLevel, cfg.Env); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.L().Named("migrate")

	sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal("select database url", zap.Error(err))
	}
	if sel.Warning != "" {
		log.Warn(sel.Warning)
	}
	log.Info("running", zap.String("command", command), zap.String("using", sel.Source))

	if err := dbmigrate.Run(command, sel.URL, dir, log); err != nil {
		log.Fatal("failed", zap.String("command", command), zap.Error(err))
	}

	log.Info("completed", zap.String("command", command))
}
