// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command portal is a headless client for the tenancy portal API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ManuGH/cloudportal/internal/config"
	xglog "github.com/ManuGH/cloudportal/internal/log"
	"github.com/ManuGH/cloudportal/internal/platform/httpx"
	"github.com/ManuGH/cloudportal/internal/portal"
	"github.com/ManuGH/cloudportal/internal/statusapi"
	"github.com/ManuGH/cloudportal/internal/telemetry"
	"github.com/ManuGH/cloudportal/internal/transport"
	"github.com/ManuGH/cloudportal/internal/version"
	"golang.org/x/sync/errgroup"
)

const usage = `usage: portal [flags] <command> [args]

commands:
  login              sign in (PORTAL_USERNAME / PORTAL_PASSWORD or -user / -password)
  logout             sign out and forget the session
  tenancies          list the tenancies of the signed-in user
  show <tenancy>     load and print the resources of a tenancy
  act <tenancy> <resource> <action> <id> [arg...]
                     run an action, e.g. act t1 machine start m1
  watch [tenancy]    print the live event stream until interrupted

flags:
`

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the command-line flags.
type options struct {
	configPath  string
	user        string
	password    string
	showVersion bool
	command     string
	args        []string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.StringVar(&o.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&o.user, "user", "", "user name for login (default $PORTAL_USERNAME)")
	fs.StringVar(&o.password, "password", "", "password for login (default $PORTAL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.showVersion {
		return o, nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return o, errors.New("missing command")
	}
	o.command, o.args = fs.Arg(0), fs.Args()[1:]
	if _, ok := commands[o.command]; !ok {
		fs.Usage()
		return o, fmt.Errorf("unknown command %q", o.command)
	}
	if o.user == "" {
		o.user = config.ParseString("PORTAL_USERNAME", "")
	}
	if o.password == "" {
		o.password = config.ParseString("PORTAL_PASSWORD", "")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "portal:", err)
		return 2
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{Level: "warn", Output: stderr, Service: "portal", Version: version.Version})
	logger := xglog.WithComponent("cli")

	cfg, err := config.NewLoader(strings.TrimSpace(opts.configPath), version.Version).Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", opts.configPath).
			Msg("failed to load configuration")
		return 1
	}
	xglog.Configure(xglog.Config{Level: cfg.Log.Level, Output: stderr, Service: cfg.Log.Service, Version: cfg.Version})
	logger = xglog.WithComponent("cli")
	logger.Debug().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldBaseURL, maskURL(cfg.API.BaseURL)).
		Msg("configuration loaded")

	if err := execute(ctx, cfg, opts, stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintln(stderr, "portal:", err)
		return 1
	}
	return 0
}

// execute builds the client core, runs it for the duration of the command
// and tears it down again.
func execute(ctx context.Context, cfg config.AppConfig, opts options, stdout io.Writer) error {
	tp, err := telemetry.NewProvider(ctx, cfg.TelemetryOptions())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	jar, err := transport.NewJar(base, cfg.Session.CookieFile)
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}
	hc := httpx.NewClient(httpx.Options{
		Timeout:    cfg.API.Timeout,
		Jar:        jar,
		Instrument: cfg.Telemetry.Enabled,
	})
	defer hc.CloseIdleConnections()

	tc, err := transport.New(cfg.API.BaseURL, hc)
	if err != nil {
		return err
	}
	p, err := portal.New(portal.Options{
		Transport: tc,
		Cookies:   jar,
		Dispatch:  cfg.DispatchOptions(),
		Polling:   cfg.PollingOptions(),
	})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return p.Run(gctx) })
	if cfg.Status.Listen != "" {
		g.Go(func() error { return statusapi.Serve(gctx, cfg.Status.Listen, statusapi.NewRouter(p, version.Version)) })
	}

	cmdErr := commands[opts.command](gctx, p, opts, stdout)
	cancel()
	if err := g.Wait(); err != nil && cmdErr == nil {
		cmdErr = err
	}
	return cmdErr
}
