package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mousebridge/internal/capture"
	"mousebridge/internal/clients"
	"mousebridge/internal/config"
	"mousebridge/internal/discovery"
	"mousebridge/internal/gateway"
	"mousebridge/internal/input"
	"mousebridge/internal/logger"
	"mousebridge/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cmd, err := newRootCommand()
	if err == nil {
		err = cmd.Execute()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	var configPath string
	loader := config.NewLoader()

	cmd := &cobra.Command{
		Use:   "mousebridge",
		Short: "Drive this computer's pointer from a phone on the same network",
		Long: `mousebridge serves a pairing page with a QR code on port 8000. A phone that
scans it can connect and then send move, click and scroll gestures, which are
replayed on the local pointer.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), loader, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file (default ./mousebridge.yaml if present)")
	flags.Int("port", config.DefaultPort, "port to listen on and advertise")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := bindFlags(loader, cmd, map[string]string{
		"server.port": "port",
		"log.level":   "log-level",
	}); err != nil {
		return nil, err
	}

	return cmd, nil
}

// bindFlags binds config keys to the named command flags.
func bindFlags(loader *config.Loader, cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("bind %s: no flag --%s", key, name)
		}
		if err := loader.Viper().BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func run(ctx context.Context, loader *config.Loader, cfg *config.Config) error {
	log, level, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	loader.Watch(func(next *config.Config, err error) {
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		lvl, err := logger.ParseLevel(next.Log.Level)
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		level.SetLevel(lvl)
		log.Info("config reloaded", zap.String("file", loader.File()), zap.Stringer("log_level", lvl))
	})

	gw := gateway.New(gateway.Config{
		Sessions:     clients.NewManager(),
		Injector:     input.NewRobot(),
		Logger:       log.Named("gateway"),
		ScrollFactor: cfg.Gesture.ScrollFactor,
	})
	disc := discovery.NewService(
		discovery.NewNetResolver(),
		discovery.NewQRGenerator(cfg.Pairing.QRScale),
		cfg.Server.Port,
		log.Named("discovery"),
	)
	srv := server.New(server.Config{
		Gateway:         gw,
		Discovery:       disc,
		Screen:          capture.NewScreen(),
		Identity:        clients.RemoteAddr{},
		Logger:          log.Named("http"),
		EventsPerSecond: cfg.Control.EventsPerSecond,
		Burst:           cfg.Control.Burst,
		ScreenQuality:   cfg.Screen.Quality,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server started", zap.String("addr", httpSrv.Addr), zap.String("version", version))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	// The banner does not gate serving.
	g.Go(func() error {
		disc.Announce()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.CloseControls()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown error", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
