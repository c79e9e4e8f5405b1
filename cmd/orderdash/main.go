package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"orderdash/internal/api"
	"orderdash/internal/config"
	"orderdash/internal/gateway"
	"orderdash/internal/session"
	"orderdash/internal/shell"
)

func main() {
	cfg := config.NewDashboard()

	// The token source closes over the store so the api client can be built
	// first; the store needs the gateway for its login call.
	var store *session.Store
	client := api.NewClient(cfg.APIAddress, func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	})
	gw := gateway.New(client)

	storage := session.NewFileStorage(cfg.SessionFile)
	store = session.New(storage, gw)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := shell.New(store, gw, os.Stdin, os.Stdout)
	if err := sh.Run(ctx); err != nil {
		slog.Error("shell failed", "error", err)
		os.Exit(1)
	}
}
