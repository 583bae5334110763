package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/recall"
	"github.com/aretw0/recall/pkg/adapters/fs"
)

var openPrint bool

var openCmd = &cobra.Command{
	Use:   "open <note>",
	Short: "Open the document a note links to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := resolveEnv(true)
		if err != nil {
			return err
		}
		vaultRoot := e.config.Vault.Root
		if vaultRoot == "" {
			vaultRoot = e.root
		} else if !filepath.IsAbs(vaultRoot) {
			vaultRoot = filepath.Join(e.root, vaultRoot)
		}
		vault, err := fs.NewVault(fs.VaultConfig{
			Root:    vaultRoot,
			Name:    e.config.Vault.Name,
			Pattern: e.config.Vault.Pattern,
		})
		if err != nil {
			return err
		}

		// The engine opens links in the background; a short-lived process
		// resolves the link and opens it synchronously instead.
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			n, err := resolveNote(eng, args[0])
			if err != nil {
				return err
			}
			link, err := eng.LinkOf(n.Key)
			if err != nil {
				return err
			}
			if openPrint {
				fmt.Fprintln(cmd.OutOrStdout(), vault.URL(link))
				return nil
			}
			slog.Debug("opening link", "note", n.Key, "url", vault.URL(link))
			return vault.OpenLink(ctx, link)
		}, recall.WithLinker(vault))
	},
}

var linksCmd = &cobra.Command{
	Use:   "links [term]",
	Short: "Search vault documents notes can link to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		return withEngine(cmd, func(ctx context.Context, eng *recall.Engine) error {
			found, err := eng.SearchLinks(ctx, term)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), found)
			}
			for _, f := range found {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		})
	},
}

func init() {
	openCmd.Flags().BoolVar(&openPrint, "print", false, "Print the URL instead of opening it")
	rootCmd.AddCommand(openCmd, linksCmd)
}
