package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var portFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "zerolink-server",
		Short: "ZeroLink real-time messaging relay",
		Run:   runServer,
	}

	rootCmd.Flags().StringVarP(&portFlag, "port", "p", "", "listen port (overrides PORT)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	app, cleanup, err := InitializeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	port := app.Config.Port
	if portFlag != "" {
		port = portFlag
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: app.Router,
		// These bound only plain HTTP requests; WebSocket connections are
		// hijacked by the upgrader and unaffected.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		app.Logger.Info().
			Str("port", port).
			Str("env", app.Config.Env).
			Msg("starting ZeroLink server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	app.Logger.Info().Msg("server stopped")
}
