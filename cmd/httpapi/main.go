// Command httpapi exposes the trading platform over HTTP. It is a thin
// boundary adapter: every handler decodes a request, takes the shared
// mutex, calls into platform.TradingPlatform, and encodes the result;
// none of the matching or ledger logic lives here.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"order-matching-engine/internal/platform"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] .env not loaded: %v", err)
	}

	log.Println("[INFO] Starting trading platform HTTP API...")

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := newServer(platform.New())

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", srv.handleOrders)
	mux.HandleFunc("/orderbook", srv.handleOrderBook)
	mux.HandleFunc("/transactions", srv.handleTransactions)
	mux.HandleFunc("/accounts", srv.handleAccounts)
	mux.HandleFunc("/accounts/", srv.handleAccountByID)
	mux.HandleFunc("/transfer", srv.handleTransfer)
	mux.HandleFunc("/health", srv.handleHealth)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[INFO] Server starting on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[ERROR] Server failed: %v", err)
		}
	}()

	<-stop
	log.Println("[INFO] Shutdown signal received, initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
	} else {
		log.Println("[INFO] Server gracefully stopped")
	}
}
