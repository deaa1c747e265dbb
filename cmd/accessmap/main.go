package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"accessmap/internal/inventory"
	"accessmap/internal/logging"
	"accessmap/internal/match"
	"accessmap/internal/outputter"
	"accessmap/internal/resolve"
	"accessmap/internal/snapshot"
)

func main() {
	var (
		snapshotPath string
		identity     string
		profilesPath string
		jsonOutput   bool
		debug        bool
		workers      int
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "accessmap",
		Short: "Access Map - privileged access path resolver",
		Long:  "Resolves which infrastructure targets each identity can reach, and by what path, from a collected inventory snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccessMap(ctx, snapshotPath, identity, profilesPath, jsonOutput, debug, workers)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path to the snapshot file (JSON or YAML)")
	rootCmd.Flags().StringVar(&identity, "identity", "", "Resolve a single identity instead of the whole graph")
	rootCmd.Flags().StringVar(&profilesPath, "platform-profiles", "", "Override the connection-profile platform mapping (YAML)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of formatted output")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent identity resolutions (0 = default)")
	_ = rootCmd.MarkFlagRequired("snapshot")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAccessMap(ctx context.Context, snapshotPath, identity, profilesPath string, jsonOutput, debug bool, workers int) error {
	// .env is optional; flags and environment take precedence
	_ = godotenv.Load()

	if debug {
		logging.SetLogLevel(logging.LogLevelDebug)
	}

	if profilesPath != "" {
		config, err := match.LoadProfileConfig(profilesPath)
		if err != nil {
			return fmt.Errorf("error loading platform profile config: %w", err)
		}
		match.SetProfileConfig(config)
	}

	data, err := inventory.LoadSnapshotFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("error loading snapshot: %w", err)
	}
	snap := snapshot.New(data)

	if identity != "" {
		mapping := resolve.Identity(snap, identity)
		return render(mapping, outputter.FormatIdentityMapping(mapping), jsonOutput, debug)
	}

	graph, err := resolve.Graph(ctx, snap, resolve.Options{Workers: workers})
	if err != nil && !graph.Partial {
		return fmt.Errorf("error resolving access graph: %w", err)
	}
	if renderErr := render(graph, outputter.FormatGraphMapping(graph), jsonOutput, debug); renderErr != nil {
		return renderErr
	}
	return err
}

func render(v interface{}, formatted string, jsonOutput, debug bool) error {
	if jsonOutput {
		out, err := outputter.FormatJSON(v)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(formatted)
	}
	if debug {
		fmt.Print(logging.GetMetrics().FormatMetricsSummary())
	}
	return nil
}
