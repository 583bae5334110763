package fs

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/recall/pkg/core"
)

// DefaultLinkPattern selects the documents notes may link to.
const DefaultLinkPattern = "**/*.md"

// Opener hands a URL to the desktop.
type Opener func(ctx context.Context, rawURL string) error

// VaultConfig configures a Vault.
type VaultConfig struct {
	Root    string // directory searched for linkable documents
	Name    string // vault name used in open URLs; defaults to the root's base name
	Pattern string // doublestar pattern, defaults to DefaultLinkPattern
	Opener  Opener // defaults to SystemOpener
}

// Vault implements core.Linker over a directory of markdown documents.
// Link identifiers are slash separated paths relative to the root.
type Vault struct {
	root    string
	name    string
	pattern string
	fsys    fs.FS
	opener  Opener
}

// NewVault creates a link resolver rooted at config.Root.
func NewVault(config VaultConfig) (*Vault, error) {
	if config.Pattern == "" {
		config.Pattern = DefaultLinkPattern
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid link pattern %q", config.Pattern)
	}
	if config.Name == "" {
		config.Name = baseName(config.Root)
	}
	if config.Opener == nil {
		config.Opener = SystemOpener
	}
	return &Vault{
		root:    config.Root,
		name:    config.Name,
		pattern: config.Pattern,
		fsys:    os.DirFS(config.Root),
		opener:  config.Opener,
	}, nil
}

// Search lists documents whose path contains term, ignoring case. An empty
// term lists every document. Results are sorted.
func (v *Vault) Search(ctx context.Context, term string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(v.fsys, v.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("search vault %s: %w", v.root, err)
	}

	needle := strings.ToLower(term)
	out := matches[:0]
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m), needle) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out, nil
}

// OpenLink opens the document through the desktop URL handler.
func (v *Vault) OpenLink(ctx context.Context, identifier string) error {
	if identifier == "" {
		return core.ErrNoLink
	}
	return v.opener(ctx, v.URL(identifier))
}

// URL builds the obsidian URL that opens identifier in this vault.
func (v *Vault) URL(identifier string) string {
	return "obsidian://open?vault=" + encodeComponent(v.name) + "&file=" + encodeComponent(identifier)
}

// encodeComponent escapes s for use inside a query value, with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func baseName(root string) string {
	root = strings.TrimRight(root, `/\`)
	if i := strings.LastIndexAny(root, `/\`); i >= 0 {
		return root[i+1:]
	}
	return root
}

// SystemOpener starts the platform URL handler and does not wait for it.
func SystemOpener(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", rawURL, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ core.Linker = (*Vault)(nil)
