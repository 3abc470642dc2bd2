package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fintab/internal/admin"
	"github.com/dmitrijs2005/fintab/internal/logging"
	"github.com/dmitrijs2005/fintab/internal/server"
	"github.com/dmitrijs2005/fintab/internal/server/config"
)

// Server flags come first, then the command:
//
//	fintab-admin -d postgres://... migrate
func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.Environment)
	b, err := server.NewBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer b.Close()

	app := admin.NewApp(b.Users, b.Migrator, os.Stdin, os.Stdout)
	if err := app.Run(ctx, config.Positional(os.Args[1:])); err != nil {
		fmt.Fprintln(os.Stderr, err)
		b.Close()
		os.Exit(2)
	}
}
