package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/club100/internal/server"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/urfave/cli/v3"
)

// serveAddr picks the listen address from flags, falling back to the config.
func (r *Runner) serveAddr(cmd *cli.Command) string {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// newAPIHandler wires the resolver, importer and persisted timeline into the HTTP router.
func (r *Runner) newAPIHandler(ctx context.Context) (*server.BasicRouter, error) {
	res, err := r.resolver()
	if err != nil {
		return nil, err
	}
	ctrl, err := r.controller(ctx)
	if err != nil {
		return nil, err
	}

	api := server.NewAPI(server.APIOpts{
		Searcher: res,
		Importer: r.importer(res, r.config.Import.RateLimit, 0),
		Timeline: ctrl,
		Logger:   shared.WithLogger(r.logger, "component", "server"),
	})
	return server.NewRouter(api), nil
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	handler, err := r.newAPIHandler(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := r.serveAddr(cmd)
	r.writePlain("Listening on http://%s\n", addr)
	if err := server.Serve(ctx, addr, handler, shared.WithLogger(r.logger, "component", "server")); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
