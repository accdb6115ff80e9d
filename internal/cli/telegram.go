package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/offline-assistant/internal/bot"
)

func telegramCommand(opts *options) *cli.Command {
	var token string

	return &cli.Command{
		Name:  "telegram",
		Usage: "Serve the assistant as a Telegram bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "token",
				Usage:       "Telegram bot token (overrides telegram.token)",
				Destination: &token,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			e, err := opts.env(reg)
			if err != nil {
				return err
			}
			defer e.Close()

			if token == "" {
				token = e.cfg.Telegram.Token
			}
			if token == "" {
				return errors.New("telegram token is required")
			}

			handler := bot.NewHandler(
				e.store,
				sessionFactory(e.cfg, e.engine, e.metrics, e.logger),
				e.cfg.Telegram.SessionTTL,
				e.cfg.Assistant.ListLimit,
				e.logger,
			)
			b, err := bot.New(token, handler, e.logger)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return b.Start(gctx)
			})
			if addr := e.cfg.Metrics.Addr; addr != "" {
				g.Go(func() error {
					return serveMetrics(gctx, addr, reg, e.logger)
				})
			}

			e.logger.Info("Telegram bot started")
			return g.Wait()
		},
	}
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	srv := &fasthttp.Server{
		Handler: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		Name:    "offline-assistant",
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil {
			logger.Warn("Failed to stop metrics server", zap.Error(err))
		}
		return nil
	}
}
