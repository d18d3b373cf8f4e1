package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/scribed-io/scribed/internal/bus"
	"github.com/scribed-io/scribed/internal/config"
	"github.com/scribed-io/scribed/internal/format"
	"github.com/scribed-io/scribed/internal/job"
	"github.com/scribed-io/scribed/internal/pipeline"
	"github.com/scribed-io/scribed/internal/server"
	"github.com/scribed-io/scribed/internal/transcriber"
	"github.com/scribed-io/scribed/internal/transcript"
	"github.com/scribed-io/scribed/internal/tui"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "scribed",
	Short: "Asynchronous audio transcription service",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		configureCmd(),
		convertCmd(),
		versionCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the transcription server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	mgr, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := mgr.GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w (run 'scribed configure')", err)
	}

	adapter, err := transcriber.New(cfg.ToTranscriberConfig())
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.StartWatching(ctx); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	defer mgr.Stop()

	jobs := job.NewStore()
	scripts := transcript.NewStore()
	eventBus := bus.New(cfg.Server.SubscriberBuffer)

	ctrl := pipeline.New(cfg.ToPipelineConfig(), jobs, scripts, eventBus, adapter)
	ctrl.StartJanitor(ctx)

	srv := server.New(cfg.Server, ctrl, jobs, eventBus)
	return srv.Run(ctx)
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for scribed.
This will guide you through setting up:
- Provider API keys
- Transcription model and language
- Server and pipeline settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println("Start the server with: scribed serve")

	return nil
}

func convertCmd() *cobra.Command {
	var target string
	var output string

	cmd := &cobra.Command{
		Use:   "convert <transcript.srt>",
		Short: "Convert an SRT transcript to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], strings.ToLower(target), output)
		},
	}

	cmd.Flags().StringVarP(&target, "format", "f", format.VTT, "Target format (srt, vtt, lrc, txt)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: input name with new extension)")

	return cmd
}

func runConvert(input, target, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	units, err := format.ParseSRT(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}

	out, err := format.Render(units, target)
	if err != nil {
		return err
	}

	if output == "" {
		output = format.Filename(filepath.Base(input), target)
	}

	if err := os.WriteFile(output, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d cues)\n", output, len(units))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scribed version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("scribed", version)
		},
	}
}
