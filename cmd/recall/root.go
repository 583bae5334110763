package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/internal/platform"
)

var (
	verbose    bool
	rootFlag   string
	configFlag string
	adapter    string
	readOnly   bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Spaced-repetition review tree for your notes",
	Long: `Recall keeps a tree of notes, each following a forgetting curve.
Marking a note done schedules its next review; a background classifier
flags reviews that are due or long overdue.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(verbose))
	},
}

// newLogger writes text logs to stderr so stdout stays parseable with --json.
func newLogger(debug bool) *slog.Logger {
	var level slog.LevelVar
	if debug {
		level.Set(slog.LevelDebug)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Recall root (default: nearest directory with .recall or recall.yaml)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: <root>/.recall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite or memory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Never write the document")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine readable output")
}

// env is the resolved root and configuration of an invocation.
type env struct {
	root   string
	config Config
}

// resolveEnv finds the recall root and loads its configuration. When
// discover is false the working directory is used as root if none is found.
func resolveEnv(discover bool) (env, error) {
	root := rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return env{}, err
		}
		found, err := recall.FindRoot(wd)
		switch {
		case err == nil:
			root = found
		case errors.Is(err, platform.ErrRootNotFound) && !discover:
			root = wd
		case errors.Is(err, platform.ErrRootNotFound):
			return env{}, fmt.Errorf("not inside a recall root (run 'recall init')")
		default:
			return env{}, err
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return env{}, err
	}

	path := configFlag
	if path == "" {
		path = configPath(root)
	}
	cfg, err := LoadConfig(path, configFlag != "")
	if err != nil {
		return env{}, err
	}
	if adapter != "" {
		cfg.Adapter = adapter
	}
	if readOnly {
		cfg.ReadOnly = true
	}
	if err := cfg.Validate(); err != nil {
		return env{}, err
	}
	return env{root: root, config: cfg}, nil
}

func configPath(root string) string {
	return filepath.Join(root, platform.SystemDir, platform.ConfigFile)
}

// withEngine opens the engine for the current root, runs fn and closes it.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *recall.Engine) error, extra ...recall.Option) error {
	e, err := resolveEnv(true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := append(e.config.Options(e.root), recall.WithLogger(slog.Default()), recall.WithMustExist(true))
	opts = append(opts, extra...)
	eng, err := recall.New(ctx, e.config.URI(e.root), opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eng.Close(context.WithoutCancel(ctx)); cerr != nil {
			slog.Warn("close engine", "error", cerr)
		}
	}()
	return fn(ctx, eng)
}
