// Command chatrelay runs the broadcast chat relay.
//
// Every client connected to the relay receives every frame sent by any
// client, including its own. Frames are 0xFF, an int32 little-endian length,
// then the payload.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/hioload-relay/affinity"
	"github.com/momentics/hioload-relay/control"
	"github.com/momentics/hioload-relay/internal/logging"
	"github.com/momentics/hioload-relay/reactor"
	"github.com/momentics/hioload-relay/relay"
	"github.com/momentics/hioload-relay/transport"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (watched for changes)")
	listen := flag.String("listen", "", "Listen address, overrides the config file")
	logLevel := flag.String("log-level", "", "Log level, overrides the config file")
	dev := flag.Bool("dev", false, "Human-readable development logging")
	flag.Parse()

	cfg := control.DefaultConfig()
	if *configPath != "" {
		loaded, err := control.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "chatrelay: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dev {
		cfg.LogDevelopment = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay: %v\n", err)
		os.Exit(1)
	}

	logger, level, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ln, err := transport.Listen(cfg.ListenAddr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.ListenAddr), zap.Error(err))
	}
	poller, err := reactor.New(cfg.MaxEvents)
	if err != nil {
		logger.Fatal("Failed to create reactor", zap.Error(err))
	}

	metrics := control.NewMetricsRegistry()
	r, err := relay.New(ln, poller,
		relay.WithLogger(logger),
		relay.WithMetrics(metrics),
		relay.WithReadBufferSize(cfg.ReadBufferSize),
		relay.WithMaxEvents(cfg.MaxEvents),
		relay.WithMaxFramePayload(cfg.MaxFramePayload),
		relay.WithMaxReadErrors(cfg.MaxReadErrors),
		relay.WithPollTimeout(cfg.PollTimeout),
	)
	if err != nil {
		logger.Fatal("Failed to start relay", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		reloader, err := control.NewReloader(*configPath, logger)
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			defer reloader.Close()
			reloader.OnReload(func(c control.Config) {
				if *logLevel == "" {
					if err := logging.SetLevel(level, c.LogLevel); err != nil {
						logger.Warn("Ignoring reloaded log level", zap.Error(err))
					}
				}
				r.SetMaxFramePayload(c.MaxFramePayload)
			})
			go reloader.Run(ctx)
		}
	}

	if cfg.StatsInterval > 0 {
		go logStats(ctx, logger, metrics, cfg.StatsInterval)
	}

	if cfg.PollTimeout <= 0 {
		// The loop blocks in the kernel until the next event and cannot
		// observe ctx; exit from here instead.
		go func() {
			<-ctx.Done()
			logger.Info("Shutdown signal received")
			logger.Sync()
			os.Exit(0)
		}()
	}

	if err := affinity.PinCurrentThread(cfg.CPUAffinity); err != nil {
		logger.Warn("Event loop not pinned", zap.Int("cpu", cfg.CPUAffinity), zap.Error(err))
	}

	logger.Info("Relay listening", zap.Stringer("addr", r.Addr()))
	err = r.Run(ctx)
	if closeErr := r.Close(); closeErr != nil {
		logger.Warn("Error while closing relay", zap.Error(closeErr))
	}
	if err != nil && ctx.Err() == nil {
		logger.Fatal("Relay stopped", zap.Error(err))
	}
	logger.Info("Relay shutdown complete")
}

func logStats(ctx context.Context, logger *zap.Logger, metrics *control.MetricsRegistry, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, updated := metrics.GetSnapshot()
			fields := []zap.Field{zap.Time("updated", updated)}
			for k, v := range snap {
				fields = append(fields, zap.Int64(k, v))
			}
			logger.Info("Relay stats", fields...)
		}
	}
}
