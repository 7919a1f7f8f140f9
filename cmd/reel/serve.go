package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reelvm/reel"
	httpAdapter "github.com/reelvm/reel/internal/adapters/http"
	"github.com/reelvm/reel/pkg/adapters/exprlang"
	"github.com/reelvm/reel/pkg/adapters/file"
	"github.com/reelvm/reel/pkg/adapters/yamlfile"
	"github.com/reelvm/reel/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine behind an HTTP control surface",
	Long:  `Runs the engine on an internal tick loop and exposes state, play and save controls as a JSON API, plus Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Float64("fps", 30, "Tick rate in frames per second")
	serveCmd.Flags().String("save-dir", "", "Directory for save slots (default: <dir>/.reel/saves)")
}

func serve(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("dir")
	port, _ := cmd.Flags().GetString("port")
	fps, _ := cmd.Flags().GetFloat64("fps")
	saveDir, _ := cmd.Flags().GetString("save-dir")

	if fps <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if saveDir == "" {
		saveDir = dir + "/.reel/saves"
	}

	library, err := yamlfile.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to load graphs: %w", err)
	}

	registry := prometheus.NewRegistry()
	eng, err := reel.New(library,
		reel.WithLogger(newLogger(cmd)),
		reel.WithEvaluator(exprlang.New()),
		reel.WithStore(file.New(saveDir)),
		reel.WithMetrics(observability.NewMetrics(registry)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tick loop runs beside the HTTP handlers; the engine serializes access.
	go func() {
		interval := time.Duration(float64(time.Second) / fps)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				eng.Tick(ctx, now.Sub(last).Seconds())
				last = now
			}
		}
	}()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: httpAdapter.NewHandler(eng, registry),
	}

	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting Reel server on %s\n", srv.Addr)
		fmt.Printf("Serving graphs from: %s\n", dir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if closeErr := srv.Close(); closeErr != nil {
				return closeErr
			}
		}
		fmt.Println("Reel server stopped gracefully")
		return nil
	}
}
