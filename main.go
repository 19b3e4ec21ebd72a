package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dataops-tools/escopy/cluster"
	"github.com/dataops-tools/escopy/config"
	"github.com/dataops-tools/escopy/errors"
	"github.com/dataops-tools/escopy/escopy"
	"github.com/dataops-tools/escopy/log"
	"github.com/dataops-tools/escopy/metrics"
	"github.com/dataops-tools/escopy/pairs"
)

// Constants for the metrics server configuration.
const (
	ServerReadTimeout       = 30 * time.Second
	ServerReadHeaderTimeout = 3 * time.Second
)

// contextKey is a type for context keys used in this package.
type contextKey string

// configContextKey is the context key for storing *config.Config.
const configContextKey contextKey = "config"

var (
	Version   = "v0.3.0" //nolint:gochecknoglobals
	Platform  = ""       //nolint:gochecknoglobals
	GitCommit = ""       //nolint:gochecknoglobals
	GitBranch = ""       //nolint:gochecknoglobals
	BuildTime = ""       //nolint:gochecknoglobals
)

func buildVersion() string {
	return Version + " " + GitCommit + " " + BuildTime
}

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "escopy",
	Short: "Elasticsearch index replication tool",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		logLevel, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			logLevel = zerolog.InfoLevel
		}

		lg := log.InitGlobals(logLevel, cfg.Log.JSON, cfg.Log.NoColor)
		ctx := lg.WithContext(context.Background())
		ctx = context.WithValue(ctx, configContextKey, cfg)
		cmd.SetContext(ctx)

		return nil
	},

	RunE: func(cmd *cobra.Command, _ []string) error {
		// Check if this is the root command being executed without a subcommand
		if cmd.CalledAs() != "escopy" || cmd.ArgsLenAtDash() != -1 {
			return nil
		}

		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		log.Ctx(cmd.Context()).Info("escopy " + buildVersion())

		return runCopy(cmd.Context(), cfg)
	},
}

//nolint:gochecknoglobals
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		info := fmt.Sprintf("Version:   %s\nPlatform:  %s\nGitCommit: "+
			"%s\nGitBranch: %s\nBuildTime: %s\nGoVersion: %s",
			Version,
			Platform,
			GitCommit,
			GitBranch,
			BuildTime,
			runtime.Version(),
		)

		cmd.Println(info)
	},
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output log in JSON format")
	rootCmd.PersistentFlags().Bool("log-no-color", false, "Disable log color")

	rootCmd.Flags().String("source-url", "", "Base URL of the source Elasticsearch cluster")
	rootCmd.Flags().String("source-username", "", "Basic auth username for the source cluster")
	rootCmd.Flags().String("source-password", "", "Basic auth password for the source cluster")

	rootCmd.Flags().String("target-url", "", "Base URL of the destination Elasticsearch cluster")
	rootCmd.Flags().String("target-username", "", "Basic auth username for the destination cluster")
	rootCmd.Flags().String("target-password", "", "Basic auth password for the destination cluster")

	rootCmd.Flags().String("indices", "",
		"Comma-separated index list (e.g. logs,users:users-v2)")
	rootCmd.Flags().Int("batch-size", config.DefaultBatchSize,
		"Documents per scroll page and bulk request")
	rootCmd.Flags().Int("total-fields-limit", config.FieldLimitFromSource,
		"Destination total-fields limit (-1 = copy from source, 0 = omit)")
	rootCmd.Flags().Duration("scroll-keep-alive", config.DefaultScrollKeepAlive,
		"Scroll cursor lease duration (e.g. 5m)")
	rootCmd.Flags().Int("parallel", 1, "Number of index pairs copied concurrently")

	rootCmd.Flags().Int("metrics-port", 0,
		"Port for the Prometheus /metrics listener (0 = disabled)")

	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if err != nil {
		zerolog.Ctx(context.Background()).Fatal().Err(err).Msg("")
	}
}

// runCopy connects both clusters and replicates every configured index pair.
func runCopy(ctx context.Context, cfg *config.Config) error {
	err := config.Validate(cfg)
	if err != nil {
		return errors.Wrap(err, "validate options")
	}

	config.WarnDeprecatedEnvVars(ctx)

	indexPairs, err := pairs.Parse(cfg.Indices)
	if err != nil {
		return errors.Wrap(err, "parse indices")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, os.Kill)
	defer stop()

	source, err := cluster.Connect(cluster.Endpoint{
		URL:      cfg.SourceURL,
		Username: cfg.SourceUsername,
		Password: cfg.SourcePassword,
	})
	if err != nil {
		return errors.Wrap(err, "connect to source")
	}

	target, err := cluster.Connect(cluster.Endpoint{
		URL:      cfg.TargetURL,
		Username: cfg.TargetUsername,
		Password: cfg.TargetPassword,
	})
	if err != nil {
		return errors.Wrap(err, "connect to target")
	}

	lg := log.Ctx(ctx)

	sourceInfo, err := cluster.Version(ctx, source)
	if err != nil {
		return errors.Wrap(err, "source cluster info")
	}

	lg.Infof("Source: %s at %s", sourceInfo, cfg.SourceURL)

	targetInfo, err := cluster.Version(ctx, target)
	if err != nil {
		return errors.Wrap(err, "target cluster info")
	}

	lg.Infof("Target: %s at %s", targetInfo, cfg.TargetURL)

	if cfg.MetricsPort != 0 {
		startMetricsServer(ctx, cfg.MetricsPort)
	}

	copier := escopy.New(source, target, escopy.Options{
		BatchSize:        cfg.BatchSize,
		TotalFieldsLimit: cfg.TotalFieldsLimit,
		ScrollKeepAlive:  cfg.ScrollKeepAlive,
		Parallelism:      cfg.Parallel,
	})

	stats := copier.Run(ctx, indexPairs)

	fmt.Fprintln(os.Stdout, stats.Summary())

	if stats.HasFailures() {
		return errors.Errorf("%d of %d indices failed",
			len(stats.Failed()), len(indexPairs))
	}

	return nil
}

// startMetricsServer exposes Prometheus metrics for the duration of the run.
func startMetricsServer(ctx context.Context, port int) {
	registry := prometheus.NewRegistry()
	metrics.Init(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: mux,

		ReadTimeout:       ServerReadTimeout,
		ReadHeaderTimeout: ServerReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), config.CloseTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	go func() {
		log.Ctx(ctx).Info("Serving metrics at http://" + srv.Addr + "/metrics")

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Ctx(ctx).Error(err, "Metrics server")
		}
	}()
}
