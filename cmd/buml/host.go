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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	bumlhttp "github.com/aretw0/buml/pkg/adapters/http"
	"github.com/aretw0/buml/pkg/codec"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Start the model host used by the *_with_url tools",
	Long: `Starts an HTTP host that stores encoded domain models.

  GET    /models/{id}          download a model
  POST   /models/{id}          upload a model (PUT is accepted too)
  DELETE /models/{id}          remove a model
  GET    /models/{id}/events   stream model updates (SSE)
  GET    /openapi.yaml         the API description`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Host.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Backend, _ = cmd.Flags().GetString("store")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		store, _, closer, err := openStore(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts := []bumlhttp.Option{
			bumlhttp.WithLogger(logger),
			bumlhttp.WithGatherer(reg),
		}
		if cfg.Host.ValidateToken {
			opts = append(opts, bumlhttp.WithTokenValidation(codec.New(codec.WithLogger(logger))))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
			Handler:           bumlhttp.NewHandler(store, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Model host listening", "address", srv.Addr, "store", cfg.Store.Backend)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("could not stop host gracefully: %w", err)
			}
			logger.Info("Model host stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().IntP("port", "p", 9090, "Port to listen on")
	hostCmd.Flags().String("store", "memory", "Model store: memory, file or redis")
}
