// Command hive runs a hierarchy of LLM agents that builds and maintains a
// software project from a single natural-language request.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"hive/config"
	"hive/events"
	"hive/llm"
	"hive/orch"
	"hive/store"
	"hive/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hive [prompt]",
		Short: "hierarchical multi-agent project builder",
		Long: `Hive decomposes a natural-language request across a tree of LLM agents:
a master plans, managers own directories, coders own single files, and
ephemeral testers verify. The final result is printed on stdout.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default config/hive.yaml)")
	return cmd
}

func run(ctx context.Context, configPath, prompt string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Get()
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.Workspace.Path, 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	llms := llm.NewManager()
	for name, llmCfg := range cfg.LLMs {
		if err := llms.RegisterLLM(llm.Purpose(name), llmCfg); err != nil {
			return fmt.Errorf("failed to register %s LLM: %w", name, err)
		}
		logger.Info("registered LLM",
			zap.String("purpose", name),
			zap.String("provider", llmCfg.Provider),
			zap.String("model", llmCfg.Model))
	}

	bus := events.NewBus()
	defer bus.Close()

	var ledger *store.Ledger
	if cfg.Ledger.Path != "" {
		ledger, err = store.NewLedger(cfg.Ledger.Path)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()
	}

	o := orch.New(cfg, llms, bus, ledger, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if cfg.Web.ListenAddr != "" {
		hub := web.NewHub(cfg.Web.ListenAddr, bus, logger)
		logger.Info("event stream listening", zap.String("addr", cfg.Web.ListenAddr))
		g.Go(func() error { return hub.Run(gctx) })
	}

	var result string
	g.Go(func() error {
		defer cancel() // run finished, take the web hub down with it
		r, err := o.Run(gctx, prompt)
		result = r
		return err
	})

	err = g.Wait()
	if result != "" {
		fmt.Println(result)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newLogger builds the process logger. Log output goes to stderr so stdout
// carries only the final result.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
