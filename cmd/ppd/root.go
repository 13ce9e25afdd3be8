// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppd/internal/fetch"
	"github.com/pdiddy/ppd/internal/history"
	"github.com/pdiddy/ppd/internal/httputil"
	"github.com/pdiddy/ppd/internal/resolve"
	"github.com/pdiddy/ppd/pkg/types"
)

// now is replaced in tests to pin the default year and month.
var now = time.Now

// app holds the per-invocation state shared by the commands.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	log    *logrus.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: newViper(), stdout: stdout, stderr: stderr}
	today := now()

	cmd := &cobra.Command{
		Use:   "ppd [w|wp|g|mwb]",
		Short: "Download periodic publications from the command line",
		Long: `ppd, short for "periodic publication downloader", downloads the periodic
publication specified: Awake! (g), the public (wp) and study (w) editions of
The Watchtower, or the Meeting Workbook (mwb), in any offered format.

Links are resolved through the publisher's media-link API one month at a
time. Files that already exist in the destination are skipped, so an
interrupted run can simply be repeated.`,
		Example: `  # Awake! of September 2010, PDF, English
  ppd g --year 2010 --month 9 --format pdf --lang e

  # Public Watchtower of the current month, EPUB, Arabic
  ppd wp --format epub --lang a

  # Every Meeting Workbook from January to December 2018, JWPUB, Amharic
  ppd mwb -y 2018 -m 1 -f jwpub -l am -c -r`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     []string{"w", "wp", "g", "mwb"},
		Version:       version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			if err := readConfig(a.v, cfgFile, a.stderr); err != nil {
				return err
			}
			a.log = newLogger(a.v, a.stderr)
			return nil
		},
		RunE: a.runRoot,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.IntP("year", "y", today.Year(), "year of the issue (defaults to the current year)")
	flags.IntP("month", "m", int(today.Month()), "month of the issue (defaults to the current month)")
	flags.StringP("lang", "l", defaultLang, "short language code of the target language (e.g. AM for Amharic, E for English)")
	flags.StringP("format", "f", defaultFormat, "file format: PDF, JWPUB, EPUB, RTF, TXT, BRL, BES or DAISY")
	flags.BoolP("cont", "c", false, "continue fetching links for releases until the end of the year")
	flags.BoolP("hierarchy", "r", false, "save downloads under <pub>/<LANG>/<YYYY>/ below --dir")
	flags.BoolP("link-only", "o", false, "only show download links (publications are not downloaded)")
	flags.Bool("yaml", false, "with --link-only, print the resolved links as YAML")
	flags.StringP("dir", "d", ".", "base directory for downloads")
	flags.Duration("timeout", 0, "HTTP request timeout (default 30s)")
	flags.Bool("progress", true, "show download progress")
	flags.String("endpoint", types.DefaultEndpoint, "media-link API endpoint")
	_ = flags.MarkHidden("endpoint")

	pflags := cmd.PersistentFlags()
	pflags.String("config", "", "config file (default: ./ppd.yaml or ~/.config/ppd/ppd.yaml)")
	pflags.String("history", "", "SQLite database recording download history (empty disables)")
	pflags.Bool("verbose", false, "log diagnostics to stderr")

	cmd.AddCommand(newVersionCmd(), newHistoryCmd(a))

	if err := bindFlags(a.v, cmd); err != nil {
		panic(err)
	}
	return cmd
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	cont, _ := cmd.Flags().GetBool("cont")
	linkOnly, _ := cmd.Flags().GetBool("link-only")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	opts, err := types.NewResolutionOptions(args[0], year, month, a.v.GetString("lang"), a.v.GetString("format"), cont)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	// Resolver requests are bounded end to end; download clients are not.
	client := &http.Client{Timeout: a.v.GetDuration("timeout")}

	narration := a.stdout
	if linkOnly && asYAML {
		narration = io.Discard
	}
	resolver := resolve.NewResolver(client, resolverConfig(a.v), narration, a.log)
	links, err := resolver.Resolve(ctx, opts)
	switch {
	case errors.Is(err, httputil.ErrInterrupted):
		return exitf(130, "\nDownload interrupted. Exiting...")
	case errors.Is(err, httputil.ErrNoConnectivity):
		a.log.WithError(err).Debug("resolution aborted")
		return exitf(1, "Could not connect to the internet. Exiting...")
	case err != nil:
		return err
	}

	if linkOnly {
		if asYAML {
			return writeLinksYAML(a.stdout, links)
		}
		return nil
	}

	dest := fetch.Destination{BaseDir: a.v.GetString("dir"), Hierarchy: a.v.GetBool("hierarchy")}
	fcfg := fetchConfig(a.v)
	fetcher := fetch.NewFetcher(httputil.NewStreamingClient(fcfg.Timeout), fcfg, a.stdout, a.log)
	result, err := fetcher.Fetch(ctx, links, dest.Dir(opts))
	if err == nil || errors.Is(err, httputil.ErrInterrupted) {
		a.recordHistory(opts, result)
	}

	switch {
	case errors.Is(err, fetch.ErrNoLinks):
		return exitf(1, "No download links found. Exiting...")
	case errors.Is(err, httputil.ErrInterrupted):
		return exitf(130, "\nDownload interrupted. Check '%s' for downloaded publications. Exiting...", result.Dir)
	case err != nil:
		return err
	}
	if result.HasFailures() {
		return exitf(1, "%d publication(s) failed to download", result.Failed)
	}
	return nil
}

// recordHistory stores the batch in the ledger when one is configured.
// Ledger problems are logged and never fail the run.
func (a *app) recordHistory(opts types.ResolutionOptions, result fetch.BatchResult) {
	cfg := historyConfig(a.v)
	if !cfg.Enabled() || len(result.Outcomes) == 0 {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		a.log.WithError(err).Warn("history unavailable")
		return
	}
	defer store.Close()

	run := history.NewRun(opts, result.Dir)
	run.Outcomes = result.Outcomes
	// The run context may already be cancelled by an interrupt.
	if err := store.Record(context.Background(), run); err != nil {
		a.log.WithError(err).Warn("recording history failed")
	}
}

func writeLinksYAML(w io.Writer, links []types.ResolvedLink) error {
	if links == nil {
		links = []types.ResolvedLink{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(links); err != nil {
		return fmt.Errorf("encoding links: %w", err)
	}
	return enc.Close()
}
