package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reelvm/reel"
	"github.com/reelvm/reel/internal/presentation/tui"
	"github.com/reelvm/reel/pkg/adapters/exprlang"
	"github.com/reelvm/reel/pkg/adapters/file"
	"github.com/reelvm/reel/pkg/adapters/yamlfile"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <graph-id>",
	Short: "Play a graph on the terminal",
	Long:  `Loads the graph files from the project directory, starts the named graph and steps the engine on a fixed-rate tick until every instance completes.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraph(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("fps", 30, "Tick rate in frames per second")
	runCmd.Flags().String("save-dir", "", "Directory for save slots (default: <dir>/.reel/saves)")
	runCmd.Flags().Bool("no-banner", false, "Suppress the startup banner")
}

func runGraph(cmd *cobra.Command, graphID string) error {
	dir, _ := cmd.Flags().GetString("dir")
	fps, _ := cmd.Flags().GetFloat64("fps")
	saveDir, _ := cmd.Flags().GetString("save-dir")
	noBanner, _ := cmd.Flags().GetBool("no-banner")

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

	renderer := tui.New(os.Stdout)
	eng, err := reel.New(library,
		reel.WithLogger(newLogger(cmd)),
		reel.WithDispatcher(tui.NewDispatcher(renderer)),
		reel.WithEvaluator(exprlang.New()),
		reel.WithStore(file.New(saveDir)),
	)
	if err != nil {
		return err
	}

	if !noBanner {
		tui.PrintBanner()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Play(ctx, graphID); err != nil {
		return err
	}

	interval := time.Duration(float64(time.Second) / fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nInterrupted.")
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			eng.Tick(ctx, dt)
			if len(eng.Status().Instances) == 0 {
				return nil
			}
		}
	}
}
