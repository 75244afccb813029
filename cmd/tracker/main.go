package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/focusforge/internal/adapters/localstore"
	"github.com/okian/focusforge/internal/adapters/remote"
	"github.com/okian/focusforge/internal/config"
	"github.com/okian/focusforge/internal/console"
	"github.com/okian/focusforge/internal/tracker"
	"github.com/okian/focusforge/pkg/logger"
)

func main() {
	var (
		serverURL = flag.String("url", "", "Base URL of the server (overrides config)")
		username  = flag.String("user", "", "Username")
		password  = flag.String("pass", "", "Password")
		register  = flag.Bool("register", false, "Create the account before logging in")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	if *serverURL == "" {
		*serverURL = cfg.ServerURL
	}

	local := localstore.New(localstore.WithPath(cfg.CachePath))
	client := remote.New(*serverURL,
		remote.WithTimeout(time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond),
	)
	gateway := tracker.NewTieredGateway(local, client)

	t := tracker.New(gateway, client,
		tracker.WithTickInterval(time.Duration(cfg.TickIntervalMS)*time.Millisecond),
		tracker.WithIdleThreshold(time.Duration(cfg.IdleThresholdSec)*time.Second),
		tracker.WithPointsPerSecond(cfg.PointsPerFocusSecond),
		tracker.WithFlushEvery(cfg.FlushEverySeconds),
		tracker.WithLogger(log),
		tracker.WithOnIdle(func() {
			os.Stdout.WriteString("you went idle; any input refocuses\n")
		}),
	)

	runner := console.NewRunner(t, os.Stdin, os.Stdout)
	if err := runner.Run(ctx, console.Config{
		Username: *username,
		Password: *password,
		Register: *register,
	}); err != nil {
		log.Error(ctx, "tracker session ended with error", logger.Error(err))
	}
}
