package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/docoutline/internal/cache"
	"github.com/dgallion1/docoutline/internal/engine"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/permalink"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "outline",
		Short: "Build and render document outlines",
		Long: `outline scans a document's headings and builds a nested, optionally
numbered table of contents for it.

Inputs may be HTML, Markdown, plain text, PDF or DOCX. Pages are separated
by <!--nextpage--> and links to headings on other pages use the configured
permalink style.

Every flag can also be set through an OUTLINE_ environment variable
(OUTLINE_DEPTH, OUTLINE_PERMALINK_BASE, ...) or a config file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./outline.yaml or ~/.outline/outline.yaml)")
	pf.StringP("output", "o", "yaml", "output format: yaml or json")
	pf.String("document-id", "", "document id; enables caching when set")
	pf.String("mode", "auto", "outline mode: auto, manual or hybrid")
	pf.String("depth", "", "heading depth below h1 to include (1-5, default 3)")
	pf.Bool("numbering", false, "prefix entries with hierarchical numbers")
	pf.String("permalink-style", "pretty", "page link style: pretty or query")
	pf.String("permalink-base", "", "base URL of the document for cross-page links")
	pf.String("cache", "memory", "cache backend: memory or sqlite")
	pf.String("sqlite-path", "data/outline-cache.db", "sqlite cache database path")
	pf.Duration("cache-ttl", 24*time.Hour, "lifetime of cached parses")
	pf.Bool("pdftotext", true, "fall back to pdftotext when a PDF has no extractable text")
	pf.Bool("verbose", false, "log diagnostics to stderr")

	root.AddCommand(newParseCmd(a), newRenderCmd(a), newWatchCmd(a), newVersionCmd())
	return root
}

// initConfig binds the executing command's flags, OUTLINE_ environment
// variables and the optional config file into one viper instance.
func (a *app) initConfig(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	a.v.SetEnvPrefix("OUTLINE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("outline")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.outline")
	}

	// Config file is optional.
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelError
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// options resolves outline options with the same fallbacks as shortcode
// attributes.
func (a *app) options() outline.Options {
	attrs := map[string]string{
		"mode":      a.v.GetString("mode"),
		"numbering": a.v.GetString("numbering"),
		"sticky":    a.v.GetString("sticky"),
		"class":     a.v.GetString("class"),
	}
	if d := a.v.GetString("depth"); d != "" {
		attrs["depth"] = d
	}
	return outline.OptionsFromAttributes(attrs)
}

// newEngine builds an engine with the configured cache and permalinks. The
// returned close function releases the cache store.
func (a *app) newEngine(log *slog.Logger) (*engine.Engine, func() error, error) {
	links, err := permalink.New(a.v.GetString("permalink-style"), a.v.GetString("permalink-base"))
	if err != nil {
		return nil, nil, err
	}

	backend := strings.ToLower(a.v.GetString("cache"))
	if backend == "pathstore" {
		return nil, nil, fmt.Errorf("the pathstore cache is only available to the server")
	}
	store, err := cache.Open(cache.OpenOptions{
		Backend:    backend,
		SQLitePath: a.v.GetString("sqlite-path"),
	})
	if err != nil {
		return nil, nil, err
	}
	c := cache.New(store, a.v.GetDuration("cache-ttl"), log)
	return engine.New(c, links, log), c.Close, nil
}
