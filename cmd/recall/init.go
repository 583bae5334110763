package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/internal/platform"
)

var (
	initVersioning bool
	initDataFile   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a recall root in the current directory",
	Long: `Create .recall/ with a default config and an empty document.
With --versioning the data directory becomes a git repository and every
change is committed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := resolveEnv(false)
		if err != nil {
			return err
		}
		cfg := e.config
		if cmd.Flags().Changed("versioning") {
			cfg.Versioning = initVersioning
		}
		if initDataFile != "" {
			cfg.DataFile = initDataFile
		}

		path := configPath(e.root)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := cfg.Write(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		opts := append(cfg.Options(e.root), recall.WithLogger(slog.Default()), recall.WithAutoInit(true))
		repo, err := recall.Init(ctx, cfg.URI(e.root), opts...)
		if err != nil {
			return err
		}
		if c, ok := repo.(io.Closer); ok {
			_ = c.Close()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized recall in %s (%s)\n", e.root, platform.DataPath(cfg.URI(e.root), cfg.Adapter))
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initVersioning, "versioning", false, "Commit every change to git")
	initCmd.Flags().StringVar(&initDataFile, "data", "", "Data file relative to the root (e.g. .recall/recall.yaml)")
	rootCmd.AddCommand(initCmd)
}
