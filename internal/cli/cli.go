// Package cli implements the budgetbubbles command-line interface.
//
// # Commands
//
//   - prepare: normalize a dataset (fill merge, densification, aggregation)
//   - layout: compute a visualization and write its state document
//   - render: draw a dataset or saved state as SVG, DOT, PNG or JSON
//   - explore: browse a visualization interactively in the terminal
//   - state: save, load and list states in the configured store
//   - serve: run the HTTP backend
//   - cache: inspect and clear the local cache
//
// Settings come from the TOML config file (see [config.Path]); flags
// override them. All commands accept --verbose for debug logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/buildinfo"
	"github.com/matzehuels/budgetbubbles/pkg/cache"
	"github.com/matzehuels/budgetbubbles/pkg/config"
	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
	"github.com/matzehuels/budgetbubbles/pkg/store"
)

// appName is the binary name used in help and suggested commands.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	Config     *config.Config
	configPath string
}

// New creates a CLI with the built-in configuration. The config file is
// read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Budget bubbles visualizes hierarchical budgets as bubbles",
		Long: `Budget bubbles turns a hierarchical budget (revenue, spending and a
comparison set, each with per-revision amounts) into an interactive bubble
visualization: every item is a circle sized by its amount that expands into
its sub-items.`,
		Version:      buildinfo.Current().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.prepareCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. A missing file keeps the defaults.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	runner.MaxTTL = c.Config.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL, appName+":")
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured state store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.Store)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// location (~/.cache/budgetbubbles/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by layout, render and explore.
type layoutFlags struct {
	opts    pipeline.Options
	noCache bool
}

func newLayoutFlags() *layoutFlags {
	return &layoutFlags{opts: pipeline.DefaultOptions()}
}

// register adds the layout flags to cmd. Defaults shown in help are the
// built-in ones; config values are applied in apply.
func (f *layoutFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.opts.Language, "lang", "l", "", "display language (e.g. et, ru)")
	fl.IntVarP(&f.opts.Revision, "revision", "r", pipeline.LatestRevision, "revision index (-1 for the latest)")
	fl.StringSliceVarP(&f.opts.Expand, "expand", "e", nil, "nodes to expand, as panel/id (repeatable, in order)")
	fl.Float64Var(&f.opts.PanelWidth, "width", 0, "budget panel width")
	fl.Float64Var(&f.opts.PanelHeight, "height", 0, "budget panel height")
	fl.IntVar(&f.opts.Iterations, "iterations", 0, "force simulation ticks per relaxation")
	fl.BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached results")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply fills options left unset on the command line from cfg.
func (f *layoutFlags) apply(cfg *config.Config) pipeline.Options {
	opts := f.opts
	if opts.Language == "" {
		opts.Language = cfg.Display.Language
	}
	if opts.PanelWidth == 0 {
		opts.PanelWidth = cfg.Layout.PanelWidth
	}
	if opts.PanelHeight == 0 {
		opts.PanelHeight = cfg.Layout.PanelHeight
	}
	if opts.Iterations == 0 {
		opts.Iterations = cfg.Layout.Iterations
	}
	opts.ComparisonWidth = cfg.Layout.ComparisonWidth
	opts.ComparisonHeight = cfg.Layout.ComparisonHeight
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// readSource reads a document from a file, or stdin for "-".
func readSource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// outputBase strips the extension from input, or from output when it names
// a supported format.
func outputBase(output, input string) string {
	if output == "" {
		if input == "-" {
			return "budget"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.SupportedFormats {
		if ext == "."+f {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
