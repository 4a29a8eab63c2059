package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/atrium/internal/config"
	"github.com/jmylchreest/atrium/internal/engine"
	"github.com/jmylchreest/atrium/internal/provider"
	"github.com/jmylchreest/atrium/internal/provider/manager"
	"github.com/jmylchreest/atrium/internal/server"
	"github.com/jmylchreest/atrium/internal/theme"
	"github.com/jmylchreest/atrium/internal/weather"
)

var (
	serveProviderName string
	serveProviderArgs map[string]string
	serveAddr         string
	servePollInterval time.Duration
	serveCacheTTL     time.Duration
	serveSubscribers  int
	serveSeed         int64
	serveSingle       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve weather and scene state over HTTP",
	Long: `Run the HTTP server: a background poller re-derives weather on an
interval, the scene animates continuously, and clients read the results
over REST or a websocket push channel.

Endpoints:
  /api/ai-weather          - Latest weather with cache metadata
  /api/weather/current     - Latest weather parameters
  /api/scene/state         - Placed-model state
  /api/scene/snapshot.png  - Rendered scene snapshot
  /ws/weather              - Websocket weather push
  /healthz                 - Liveness probe

Settings layer as config file, then environment, then flags. Flags given
on the command line always win.

Examples:
  # Serve market-driven weather on the default port
  atrium serve --rules.url https://api.example.com/stats

  # Poll a generative provider every five minutes
  atrium serve -p googlegenai --poll-interval 5m

  # Custom address with a fixed scene layout
  atrium serve --addr :9090 --seed 42`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveProviderName, "provider", "p", "rules", "Weather provider to derive with")
	serveCmd.Flags().StringToStringVar(&serveProviderArgs, "provider-args", nil, "Provider-specific arguments (key=value format, repeatable for multiple providers)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().DurationVar(&servePollInterval, "poll-interval", time.Minute, "How often to re-derive weather")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", time.Minute, "How long a derived parameter set stays fresh")
	serveCmd.Flags().IntVar(&serveSubscribers, "subscribers", 0, "Subscriber count shaping gallery contents")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "Layout seed (0 accepts the provider's hint)")
	serveCmd.Flags().BoolVar(&serveSingle, "single-instance", false, "Refuse to start when another instance is already running")
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}

	if serveSingle {
		if err := checkSingleInstance(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(globalConfig)
	if err != nil {
		return err
	}

	// Flags override the config file only when set on the command line.
	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}
	pollInterval := cfg.Server.PollInterval.Std()
	if cmd.Flags().Changed("poll-interval") {
		pollInterval = servePollInterval
	}
	cacheTTL := cfg.Server.CacheTTL.Std()
	if cmd.Flags().Changed("cache-ttl") {
		cacheTTL = serveCacheTTL
	}
	themeName := cfg.Scene.Theme
	if cmd.Flags().Changed("theme") {
		themeName = globalTheme
	}
	subscribers := cfg.Scene.SubscriberCount
	if cmd.Flags().Changed("subscribers") {
		subscribers = serveSubscribers
	}

	if _, err := theme.ByName(themeName); err != nil {
		return err
	}

	// Config file provider lists apply only when the environment does not
	// set its own (env outranks the file, the lock file outranks both).
	if len(cfg.Providers.Enabled) > 0 || len(cfg.Providers.Disabled) > 0 {
		if os.Getenv("ATRIUM_ENABLED_PROVIDERS") == "" && os.Getenv("ATRIUM_DISABLED_PROVIDERS") == "" {
			providerManager.UpdateConfig(manager.Config{
				EnabledProviders:  cfg.Providers.Enabled,
				DisabledProviders: cfg.Providers.Disabled,
			})
		}
	}

	p, err := resolveProvider(serveProviderName, serveProviderArgs, verbose)
	if err != nil {
		return err
	}

	logLevel := hclog.Info
	if verbose {
		logLevel = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "atrium",
		Output: os.Stderr,
		Level:  logLevel,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := server.NewProviderSource(p, cacheTTL, server.WithDeriveOptions(provider.DeriveOptions{
		Verbose:      verbose,
		ProviderArgs: providerArgsFor(serveProviderArgs, serveProviderName, verbose),
	}))

	// Derive once up front so the scene can seed from the provider's hint
	// and the first request already has parameters. Failures are retried by
	// the poller.
	initialParams, _, deriveErr := source.Current(ctx)
	if deriveErr != nil {
		logger.Warn("initial weather derivation failed", "error", deriveErr)
	}

	seed := serveSeed
	if seed == 0 {
		if hinter, ok := p.(provider.SeedHinter); ok {
			seed = hinter.SeedHint()
		}
	}

	// Headless: the snapshot endpoint brings its own renderer per request.
	mgr, err := engine.NewSceneManager(engine.Config{
		Theme:           themeName,
		SubscriberCount: subscribers,
		Seed:            seed,
	})
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	defer mgr.Dispose()

	srv := server.New(server.Config{
		Addr:    addr,
		Source:  source,
		Manager: mgr,
		Logger:  logger,
	})

	if deriveErr == nil {
		srv.SetLatest(initialParams)
		mgr.ApplyWeather(initialParams)
	}

	poller := &server.Poller{
		Source:   source,
		Interval: pollInterval,
		OnUpdate: func(params weather.Params) {
			srv.SetLatest(params)
			mgr.ApplyWeather(params)
		},
		Logger: logger.Named("poller"),
	}

	mgr.StartAnimation()
	defer mgr.StopAnimation()

	go poller.Run(ctx)

	logger.Info("serving", "provider", p.Name(), "poll_interval", pollInterval.String(), "theme", themeName)
	return srv.ListenAndServe(ctx)
}

// checkSingleInstance scans the process table for another live process with
// this executable's name.
func checkSingleInstance() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	name := filepath.Base(exe)

	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to get process list: %w", err)
	}

	for _, p := range processes {
		if p.Executable() == name && p.Pid() != os.Getpid() {
			return fmt.Errorf("another %s instance is already running (PID %d)", name, p.Pid())
		}
	}
	return nil
}
