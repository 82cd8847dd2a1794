package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP persistence server until interrupted. It always serves the local database, even when
// client.base_url points elsewhere.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	addr := r.config.Server.Addr()
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := services.NewLocalService(db)
	srv := server.New(addr, server.NewRouter(svc, r.logger), r.logger)
	return srv.Run(ctx)
}
