package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystal-mush/bwho/pkg/server"
)

func newConsoleCmd(conf func() *server.Conf) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Read commands from stdin",
		Long: `console reads command lines from stdin until EOF or interrupt. Besides the
lookup command it understands "help" and "reload". With --watch the roster and
admin files are reloaded when they change; with --metrics-addr Prometheus
metrics are served over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := conf()
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if c.WatchFiles {
				if err := a.srv.Watch(ctx); err != nil {
					return err
				}
			}
			if c.MetricsAddr != "" {
				shutdown := serveMetrics(c.MetricsAddr, a.metrics)
				defer shutdown()
			}

			sess, err := consoleSession(a.srv, c)
			if err != nil {
				return err
			}
			console := &server.Console{Server: a.srv, Session: sess, Out: cmd.OutOrStdout(), Prompt: prompt}
			err = console.Run(ctx, cmd.InOrStdin())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "> ", "Prompt printed before each line")
	return cmd
}

// serveMetrics serves /metrics on addr in the background and returns a
// function that shuts the listener down.
func serveMetrics(addr string, m *server.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("bwho: metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("bwho: metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
