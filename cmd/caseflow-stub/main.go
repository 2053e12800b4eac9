// Package main runs the scripted stub assistant backend used for local
// development of the caseflow assistant client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caseflow/assistant/internal/config"
	"github.com/caseflow/assistant/internal/stubserver"
)

func main() {
	cfg := config.Load()

	var (
		port  = flag.Int("port", cfg.StubPort, "listen port")
		delay = flag.Duration("delay", cfg.StubDelay, "pause between streamed events")
	)
	flag.Parse()

	server := stubserver.New(nil, *delay)

	go func() {
		addr := fmt.Sprintf(":%d", *port)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start stub server: %v", err)
		}
	}()

	log.Printf("Stub assistant listening on port %d", *port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down stub assistant...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown gracefully: %v", err)
	}
}
