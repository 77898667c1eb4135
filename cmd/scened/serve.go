package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Imergent-Technology/Protogen-sub001/internal/config"
	"github.com/Imergent-Technology/Protogen-sub001/internal/httpapi"
	"github.com/Imergent-Technology/Protogen-sub001/internal/manager"
	"github.com/Imergent-Technology/Protogen-sub001/internal/registry"
	"github.com/Imergent-Technology/Protogen-sub001/internal/toolset"
	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// serveFlags holds flag values before they are merged with a config file.
type serveFlags struct {
	configPath string
	cfg        config.Config

	preloadToolsets string
	corsOrigins     string
	corsMethods     string
	corsHeaders     string
	warmTimeoutSec  int64
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP daemon",
		Example: "  scened serve --catalog-dir ./scenes --watch-catalog\n  scened serve --config scened.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, f.warmTimeoutSec, log)
		},
	}

	// Flags with environment variable defaults
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", os.Getenv("SCENED_CONFIG"), "Optional config file (.yaml, .json, .toml)")
	fl.StringVar(&f.cfg.Addr, "addr", envOr("SCENED_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fl.StringVar(&f.cfg.CatalogDir, "catalog-dir", os.Getenv("SCENED_CATALOG_DIR"), "Directory of scene/deck catalog files")
	fl.BoolVar(&f.cfg.WatchCatalog, "watch-catalog", envBool("SCENED_WATCH_CATALOG"), "Reload the catalog when its files change")
	fl.StringVar(&f.cfg.AssetBaseURL, "asset-base-url", os.Getenv("SCENED_ASSET_BASE_URL"), "Base URL serving css/ and lib/ toolset assets (empty: no fetching)")
	fl.IntVar(&f.cfg.MaxWarmScenes, "max-warm-scenes", envInt("SCENED_MAX_WARM_SCENES", 10), "Maximum number of warm scenes")
	fl.IntVar(&f.cfg.WarmTTLSeconds, "warm-ttl-seconds", envInt("SCENED_WARM_TTL_SECONDS", 300), "Seconds a warm scene stays warm without access")
	fl.IntVar(&f.cfg.SweepIntervalSeconds, "sweep-interval-seconds", envInt("SCENED_SWEEP_INTERVAL_SECONDS", 60), "Seconds between expiry sweeps")
	fl.StringVar(&f.cfg.PreloadStrategy, "preload-strategy", envOr("SCENED_PRELOAD_STRATEGY", "proximity"), "immediate|proximity|on-demand")
	fl.IntVar(&f.cfg.MaxConcurrentRenders, "max-concurrent-renders", envInt("SCENED_MAX_CONCURRENT_RENDERS", 4), "Pre-renders allowed to run at once")
	fl.IntVar(&f.cfg.RenderQueueWaitMS, "render-queue-wait-ms", envInt("SCENED_RENDER_QUEUE_WAIT_MS", 0), "Milliseconds a warm waits for a render slot before 429 (0 = wait)")
	fl.StringVar(&f.preloadToolsets, "preload-toolsets", envOr("SCENED_PRELOAD_TOOLSETS", "graph,card"), "Comma-separated toolsets to preload at startup")
	fl.StringVar(&f.cfg.LogLevel, "log-level", envOr("SCENED_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	fl.StringVar(&f.cfg.LogFormat, "log-format", envOr("SCENED_LOG_FORMAT", "json"), "Log format: json|console")
	fl.BoolVar(&f.cfg.CORSEnabled, "cors-enabled", envBool("SCENED_CORS_ENABLED"), "Enable CORS")
	fl.StringVar(&f.corsOrigins, "cors-origins", envOr("SCENED_CORS_ORIGINS", "*"), "Comma-separated allowed origins")
	fl.StringVar(&f.corsMethods, "cors-methods", envOr("SCENED_CORS_METHODS", "GET,POST,PATCH,DELETE,OPTIONS"), "Comma-separated allowed methods")
	fl.StringVar(&f.corsHeaders, "cors-headers", envOr("SCENED_CORS_HEADERS", "Content-Type,X-Log-Level"), "Comma-separated allowed headers")
	fl.Int64Var(&f.cfg.MaxBodyBytes, "max-body-bytes", int64(envInt("SCENED_MAX_BODY_BYTES", 1<<20)), "Maximum JSON request body size")
	fl.Int64Var(&f.warmTimeoutSec, "warm-timeout-seconds", int64(envInt("SCENED_WARM_TIMEOUT_SECONDS", 0)), "Seconds a synchronous warm request waits (0 = no limit)")
	return cmd
}

// resolve merges the config file (if any) under explicitly set flags: a flag
// given on the command line wins, then a non-zero file value, then the flag default.
func (f *serveFlags) resolve(changed func(string) bool) (config.Config, error) {
	cfg := f.cfg
	cfg.PreloadToolsets = splitCSV(f.preloadToolsets)
	cfg.CORSOrigins = splitCSV(f.corsOrigins)
	cfg.CORSMethods = splitCSV(f.corsMethods)
	cfg.CORSHeaders = splitCSV(f.corsHeaders)
	if f.configPath != "" {
		fc, err := config.Load(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", f.configPath, err)
		}
		pickStr := func(flag string, dst *string, v string) {
			if !changed(flag) && v != "" {
				*dst = v
			}
		}
		pickInt := func(flag string, dst *int, v int) {
			if !changed(flag) && v != 0 {
				*dst = v
			}
		}
		pickBool := func(flag string, dst *bool, v bool) {
			if !changed(flag) && v {
				*dst = v
			}
		}
		pickList := func(flag string, dst *[]string, v []string) {
			if !changed(flag) && len(v) > 0 {
				*dst = v
			}
		}
		pickStr("addr", &cfg.Addr, fc.Addr)
		pickStr("catalog-dir", &cfg.CatalogDir, fc.CatalogDir)
		pickBool("watch-catalog", &cfg.WatchCatalog, fc.WatchCatalog)
		pickStr("asset-base-url", &cfg.AssetBaseURL, fc.AssetBaseURL)
		pickInt("max-warm-scenes", &cfg.MaxWarmScenes, fc.MaxWarmScenes)
		pickInt("warm-ttl-seconds", &cfg.WarmTTLSeconds, fc.WarmTTLSeconds)
		pickInt("sweep-interval-seconds", &cfg.SweepIntervalSeconds, fc.SweepIntervalSeconds)
		pickStr("preload-strategy", &cfg.PreloadStrategy, fc.PreloadStrategy)
		pickInt("max-concurrent-renders", &cfg.MaxConcurrentRenders, fc.MaxConcurrentRenders)
		pickInt("render-queue-wait-ms", &cfg.RenderQueueWaitMS, fc.RenderQueueWaitMS)
		pickList("preload-toolsets", &cfg.PreloadToolsets, fc.PreloadToolsets)
		pickStr("log-level", &cfg.LogLevel, fc.LogLevel)
		pickStr("log-format", &cfg.LogFormat, fc.LogFormat)
		pickBool("cors-enabled", &cfg.CORSEnabled, fc.CORSEnabled)
		pickList("cors-origins", &cfg.CORSOrigins, fc.CORSOrigins)
		pickList("cors-methods", &cfg.CORSMethods, fc.CORSMethods)
		pickList("cors-headers", &cfg.CORSHeaders, fc.CORSHeaders)
		if !changed("max-body-bytes") && fc.MaxBodyBytes != 0 {
			cfg.MaxBodyBytes = fc.MaxBodyBytes
		}
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger. The console format is for humans.
func newLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "scened").Logger(), nil
}

// httpLogLevel maps the process level onto the coarser per-request levels.
func httpLogLevel(level string) string {
	switch level {
	case "trace", "debug":
		return "debug"
	case "warn", "error", "fatal", "panic":
		return "error"
	case "disabled":
		return "off"
	}
	return "info"
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// serve wires the toolset manager, cache, catalog and HTTP server and blocks
// until ctx is canceled or the listener fails.
func serve(ctx context.Context, cfg config.Config, warmTimeoutSec int64, log zerolog.Logger) error {
	var loader toolset.Loader = toolset.NopLoader{}
	if cfg.AssetBaseURL != "" {
		l, err := toolset.NewHTTPLoader(cfg.AssetBaseURL, nil)
		if err != nil {
			return err
		}
		loader = l
	}
	ts := toolset.NewWithOptions(toolset.Options{Loader: loader, Logger: &log})
	stopMetrics, err := toolset.RegisterMetrics(ts, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("toolset metrics: %w", err)
	}
	defer stopMetrics()

	prom, err := manager.NewPromPublisher(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("cache metrics: %w", err)
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		MaxWarmScenes:   cfg.MaxWarmScenes,
		WarmTTL:         seconds(cfg.WarmTTLSeconds),
		SweepInterval:   seconds(cfg.SweepIntervalSeconds),
		PreloadStrategy: types.PreloadStrategy(cfg.PreloadStrategy),

		MaxConcurrentRenders: cfg.MaxConcurrentRenders,
		RenderQueueWait:      time.Duration(cfg.RenderQueueWaitMS) * time.Millisecond,

		Toolsets:  ts,
		Publisher: prom,
		Logger:    &log,
	})
	mgr.Initialize()
	defer mgr.Destroy()

	store := registry.NewStore(nil)
	if cfg.CatalogDir != "" {
		c, err := registry.LoadDir(cfg.CatalogDir)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		store.Set(c)
		log.Info().Str("dir", cfg.CatalogDir).Int("scenes", len(c.Scenes())).Int("decks", len(c.Decks())).Msg("catalog loaded")
		if cfg.WatchCatalog {
			if err := registry.Watch(ctx, cfg.CatalogDir, store, log.With().Str("component", "registry").Logger(), nil); err != nil {
				return err
			}
		}
	}

	go func() {
		if err := ts.PreloadToolsets(ctx, cfg.PreloadToolsets); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("toolset preload")
		}
	}()

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(httpLogLevel(cfg.LogLevel))
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetWarmTimeoutSeconds(warmTimeoutSec)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr, ts, store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Int("max_warm_scenes", cfg.MaxWarmScenes).
			Str("preload_strategy", cfg.PreloadStrategy).Msg("scened listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("scened stopped")
	return nil
}
