package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/yafct/pkg/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}
