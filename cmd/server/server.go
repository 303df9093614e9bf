package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"ironbook/internal/engine"
	"ironbook/internal/net"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	registry := engine.NewRegistry(engine.DefaultOptions())
	srv := net.New("0.0.0.0", 9001, registry)

	log.Info().Msg("starting ironbook server")
	go srv.Run(ctx)
	<-ctx.Done()
}
