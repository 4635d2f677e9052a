package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"inkdash/internal/capture"
	"inkdash/internal/config"
	"inkdash/internal/dashboard"
	"inkdash/internal/devotional"
	appLog "inkdash/internal/log"
	"inkdash/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
}

func main() {
	appLog.Info("inkdash starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	secrets := config.LoadSecrets()

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"news_feed", conf.NewsFeed,
		"refresh_cron", conf.RefreshCron,
		"orientation", conf.Orientation,
		"outlook", secrets.HasOutlook(),
		"ics_fallback", conf.CalendarICSURL != "",
		"once", flags.once,
		"dump", flags.dump,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// active holds the live config; the watcher swaps it on reload and the
	// refresh closure reads it per cycle.
	var active atomic.Pointer[config.Config]
	active.Store(conf)

	agg := newAggregator(conf, secrets)

	// --dump builds the model once and prints it; no server or browser.
	if flags.dump {
		m, err := agg.Build(ctx)
		if err != nil {
			appLog.Error("model build failed", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			appLog.Error("failed to encode model", err)
			os.Exit(1)
		}
		return
	}

	srv := web.NewServer(conf, agg)
	httpSrv := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	refresh := func() {
		c := active.Load()
		width, height := c.Resolution()
		err := capture.DashboardPNG(ctx, capture.Options{
			URL:        dashboardURL(c.Listen),
			OutputPath: c.OutputPath,
			Width:      width,
			Height:     height,
		})
		if err != nil {
			appLog.Error("refresh capture failed", err, "output", c.OutputPath)
			return
		}
		appLog.Info("refreshed dashboard", "output", c.OutputPath)
	}

	if flags.once {
		refresh()
		shutdownHTTP(httpSrv)
		appLog.Info("inkdash exiting")
		return
	}

	// Reload config on file change. The aggregator and server pick up new
	// settings immediately; listen address and refresh_cron changes need a
	// restart.
	go func() {
		err := config.Watch(ctx, flags.configPath, func(next *config.Config) {
			prev := active.Load()
			if flags.listen != "" {
				next.Listen = flags.listen
			}
			if next.RefreshCron != prev.RefreshCron {
				appLog.Warn("refresh_cron changed; restart to apply", "refresh_cron", next.RefreshCron)
			}
			if next.Listen != prev.Listen {
				appLog.Warn("listen changed; restart to apply", "listen", next.Listen)
				next.Listen = prev.Listen
			}
			appLog.SetLevel(appLog.Level(next.LogLevel))
			active.Store(next)
			srv.Update(next, newAggregator(next, secrets))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("config watch stopped", err)
		}
	}()

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh_cron", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()

	// Initial refresh so the panel is never blank until the first tick.
	refresh()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLog.Error("HTTP server failed", err)
		cancel()
	}

	cronCtx := sched.Stop()
	<-cronCtx.Done()
	shutdownHTTP(httpSrv)

	appLog.Info("inkdash exiting")
}

// newAggregator wires the production sources, loading the devotional
// table when one is configured. A missing or broken table degrades to no
// devotional section rather than failing startup.
func newAggregator(conf *config.Config, secrets config.Secrets) *dashboard.Aggregator {
	var table *devotional.Table
	if conf.DevotionalPath != "" {
		t, err := devotional.LoadTable(conf.DevotionalPath)
		if err != nil {
			appLog.Warn("devotional table unavailable", "path", conf.DevotionalPath, "err", err)
		} else {
			table = t
		}
	}
	return dashboard.New(conf, secrets, table)
}

// dashboardURL turns a listen address into the local URL the headless
// browser navigates to. A bare ":8080" binds all interfaces but is only
// reachable for capture via loopback.
func dashboardURL(listen string) string {
	host := listen
	if strings.HasPrefix(host, ":") {
		host = "127.0.0.1" + host
	}
	return "http://" + host + "/dashboard"
}

func shutdownHTTP(s *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/inkdash/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one build+capture cycle and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "Build the render model, print it as JSON and exit")

	flag.Parse()

	return cfg
}
