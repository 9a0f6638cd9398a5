package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceNet/pkg/kicad/pcbconn"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workers    int
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "otn",
	Short: "OpenTraceNet - copper connectivity for KiCad boards",
	Long: `OpenTraceNet (otn) builds the copper connectivity graph of a KiCad board
and reports what it finds:
  - clusters of connected copper and their nets
  - nets that unconnected copper would inherit from what it touches
  - zone fill islands that connect to nothing

Board files are never written.

Examples:
  otn nets board.kicad_pcb             # List copper clusters
  otn propagate board.kicad_pcb        # Show proposed net changes
  otn islands --json board.kicad_pcb   # Isolated zone islands as JSON`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "otn:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "engine configuration file (YAML)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "search workers (default: config or number of CPUs)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of text")
}

// session is a parsed board with its connectivity built.
type session struct {
	board   *pcb.Board
	adapter *pcbconn.Adapter
	engine  *connectivity.Algorithm
	pool    *connectivity.Pool
}

func loadConfig() (*connectivity.Config, error) {
	cfg := connectivity.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = connectivity.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.Logger = slog.Default()
	return cfg, cfg.Validate()
}

// openSession parses filename and builds its connectivity.
func openSession(ctx context.Context, filename string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	board, err := pcb.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error parsing board: %w", err)
	}
	adapter, err := pcbconn.New(board, nil)
	if err != nil {
		return nil, err
	}

	pool := connectivity.NewPool(cfg.Workers)
	engine, err := connectivity.New(pool, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	engine.SetEnabledLayers(adapter.CopperLayers())
	engine.SetProgressReporter(connectivity.NewLogReporter(cfg.Logger, "build"))

	if err := engine.Build(ctx, adapter.Items()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error building connectivity: %w", err)
	}
	slog.Debug("otn: connectivity built",
		slog.String("file", filename),
		slog.Int("items", engine.ItemCount()),
		slog.Int("copper_layers", adapter.CopperLayers().Count()),
	)
	return &session{board: board, adapter: adapter, engine: engine, pool: pool}, nil
}

func (s *session) Close() {
	s.pool.Close()
}

// netLabel names a net for display.
func (s *session) netLabel(code int) string {
	if code <= 0 {
		return "<no net>"
	}
	if name := s.board.NetName(code); name != "" {
		return name
	}
	return fmt.Sprintf("net%d", code)
}
