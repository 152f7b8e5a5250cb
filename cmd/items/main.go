package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/giovaniif/items/cmd/api"
	"github.com/giovaniif/items/infra/config"
	"github.com/giovaniif/items/infra/logger"
	"github.com/giovaniif/items/infra/loki"
	"github.com/giovaniif/items/infra/metrics"
	"github.com/giovaniif/items/infra/tracing"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()
	root := &cobra.Command{
		Use:           "items",
		Short:         "Item CRUD service over a key-value store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if err := config.BindFlags(v, root.PersistentFlags()); err != nil {
		panic(err)
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the items http api",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveF(cmd.Context(), v)
		},
	}
	provision := &cobra.Command{
		Use:   "provision",
		Short: "Create the items table and mirror bucket, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			v.Set("provision", true)
			return provisionF(cmd.Context(), v)
		},
	}
	root.AddCommand(serve, provision)
	root.RunE = serve.RunE
	return root
}

type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	closers []io.Closer
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}

func setup(v *viper.Viper) (*runtime, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	var out io.Writer = os.Stdout
	if w := loki.NewWriter(cfg.LokiURL, cfg.ServiceName, loki.Options{}); w != nil {
		out = io.MultiWriter(os.Stdout, w)
		rt.closers = append(rt.closers, w)
	}
	rt.logger = logger.New(out, logger.ParseLevel(cfg.LogLevel)).With(zap.String("service", cfg.ServiceName))
	return rt, nil
}

func serveF(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(v)
	if err != nil {
		return err
	}
	defer rt.close()

	shutdown, err := tracing.Init(ctx, rt.cfg.ServiceName, rt.cfg.OTLPEndpoint)
	if err != nil {
		rt.logger.Warn("Tracing disabled", zap.Error(err))
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	store, err := api.NewStore(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, store)

	mirror, err := api.NewMirror(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, mirror)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Dependencies{
		Repository:     store,
		Mirror:         mirror,
		Logger:         rt.logger,
		Metrics:        metrics.New(),
		RequestTimeout: rt.cfg.RequestTimeout,
	})
	return api.StartServer(ctx, rt.cfg.HTTPBindAddress, router, rt.logger)
}

func provisionF(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := setup(v)
	if err != nil {
		return err
	}
	defer rt.close()

	store, err := api.NewStore(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, store)

	mirror, err := api.NewMirror(ctx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, mirror)

	rt.logger.Info("Provisioned", zap.String("table", rt.cfg.Table), zap.String("bucket", rt.cfg.Bucket))
	return nil
}
