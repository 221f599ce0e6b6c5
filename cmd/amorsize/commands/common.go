// Package commands implements amorsize's CLI subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/amorsize/amorsize/internal/cliformat"
	"github.com/amorsize/amorsize/internal/observability"
	"github.com/amorsize/amorsize/internal/workload"
	"github.com/amorsize/amorsize/pkg/amorsize"
	"github.com/amorsize/amorsize/pkg/api"
)

// sharedFlags are the tunables common to optimize, stream, execute,
// and watch.
type sharedFlags struct {
	profilePath  string
	cacheDir     string
	sampleSize   int
	chunkMillis  int
	useCache     bool
	format       string
	exportPath   string
	showProfile  bool
	metricsAddr  string
}

func registerSharedFlags(cmd *cobra.Command, f *sharedFlags) {
	cmd.Flags().StringVar(&f.profilePath, "profile-file", "", "workload profile file (YAML or JSON); empty uses a built-in default")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "decision cache directory (empty uses the OS default)")
	cmd.Flags().IntVar(&f.sampleSize, "sample-size", 5, "number of dry-run samples")
	cmd.Flags().IntVar(&f.chunkMillis, "target-chunk-ms", 200, "target chunk duration in milliseconds")
	cmd.Flags().BoolVar(&f.useCache, "use-cache", true, "consult and persist the decision cache")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text, json, yaml, table, markdown")
	cmd.Flags().StringVar(&f.exportPath, "export", "", "write the full result (plus diagnostic profile) as JSON to this path")
	cmd.Flags().BoolVar(&f.showProfile, "profile", false, "include the diagnostic profile in the output")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (empty disables)")
}

func (f *sharedFlags) loadProfile() (workload.Profile, error) {
	if f.profilePath == "" {
		return workload.DefaultProfile(), nil
	}
	return workload.LoadProfile(f.profilePath)
}

func (f *sharedFlags) options() amorsize.Options {
	opts := amorsize.DefaultOptions()
	opts.SampleSize = f.sampleSize
	opts.TargetChunkDuration = time.Duration(f.chunkMillis) * time.Millisecond
	opts.UseCache = f.useCache
	opts.Profile = f.showProfile
	return opts
}

// startMetrics starts a Prometheus scrape endpoint on addr when addr
// is non-empty, returning a collector to pass into the engine, and
// registers the server's Close on shutdown. With an empty addr it
// returns the no-op collector and registers nothing.
func startMetrics(addr string, shutdown *api.MultiCloser) observability.MetricsCollector {
	if addr == "" {
		return observability.NewNoopCollector()
	}

	registry := prometheus.NewRegistry()
	collector := observability.NewPrometheusCollector(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		_ = server.ListenAndServe()
	}()
	shutdown.Add(apiCloserFunc(func() error { return server.Close() }))

	return collector
}

type apiCloserFunc func() error

func (f apiCloserFunc) Close() error { return f() }

func writeExport(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printResult(cmd *cobra.Command, rendered string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return nil
}

func parseFormat(s string) (cliformat.Format, error) {
	return cliformat.ParseFormat(s)
}
