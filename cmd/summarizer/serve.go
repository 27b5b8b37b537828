package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thywilljoshua/pdf-summarizer/internal/api"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the text and PDF workflows over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			if addr == "" {
				addr = a.cfg.Server.Address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, err := a.summarizer(ctx)
			if err != nil {
				return err
			}
			ex, err := a.extractor()
			if err != nil {
				return err
			}
			build := func(sf orchestrator.Surface) *orchestrator.Orchestrator {
				if sf == orchestrator.SurfacePDF {
					return orchestrator.New(sf, g, a.orchestratorOptions(orchestrator.WithExtractor(ex))...)
				}
				return orchestrator.New(sf, g, a.orchestratorOptions()...)
			}
			sessions := api.NewSessions(build, a.cfg.Server.SessionTTL, a.cfg.Server.MaxSessions, a.log.Named("sessions"))

			var hist api.History
			if a.history != nil {
				hist = a.history
			}
			gin.SetMode(gin.ReleaseMode)
			router := api.NewRouter(api.NewHandler(sessions, hist, a.cfg.Server.MaxUploadBytes, a.log.Named("api")), a.log.Named("http"))
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				a.log.Info("listening", zap.String("addr", addr), zap.String("model", g.Model()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.log.Info("shutting down")
				return srv.Shutdown(sctx)
			})
			return eg.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	return cmd
}
