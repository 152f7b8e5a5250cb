package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/logger"
	"github.com/giovaniif/items/infra/metrics"
	"github.com/giovaniif/items/infra/mirrors"
	"github.com/giovaniif/items/infra/requestid"
	"github.com/giovaniif/items/infra/tracing"
	"github.com/giovaniif/items/protocols"
	"github.com/giovaniif/items/use_cases/create"
	"github.com/giovaniif/items/use_cases/get"
	"github.com/giovaniif/items/use_cases/remove"
	"github.com/giovaniif/items/use_cases/update"
)

const (
	defaultRequestTimeout = 10 * time.Second
	shutdownTimeout       = 10 * time.Second
)

type Dependencies struct {
	Repository     item.Repository
	Mirror         protocols.BlobMirror
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}

// NewRouter wires the item use cases to gin routes.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Mirror == nil {
		deps.Mirror = mirrors.BlobMirrorNoop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}

	h := &itemHandlers{
		get:            get.NewGet(deps.Repository),
		create:         create.NewCreate(deps.Repository, deps.Mirror, deps.Logger),
		update:         update.NewUpdate(deps.Repository, deps.Mirror, deps.Logger),
		remove:         remove.NewRemove(deps.Repository, deps.Mirror, deps.Logger),
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		requestTimeout: deps.RequestTimeout,
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		requestid.Middleware(),
		tracing.Middleware(),
		logger.Middleware(deps.Logger),
		deps.Metrics.Middleware(),
		gin.Recovery(),
	)

	r.GET("/items/:item_id", h.getItem)
	r.POST("/items/:item_id", h.createItem)
	r.PUT("/items/:item_id", h.updateItem)
	r.DELETE("/items/:item_id", h.deleteItem)
	r.Any("/items", methodNotAllowed)
	r.NoMethod(methodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		storeCheck := "up"
		ctx, cancel := context.WithTimeout(c.Request.Context(), deps.RequestTimeout)
		defer cancel()
		if err := deps.Repository.Ping(ctx); err != nil {
			deps.Logger.Warn("Store ping failed", zap.Error(err))
			status = "degraded"
			storeCheck = "down"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "checks": gin.H{"store": storeCheck}})
	})
	r.GET(metrics.Path, gin.WrapH(deps.Metrics.Handler()))

	return r
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

// StartServer serves handler on addr until ctx is done, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		log.Info("Items is running", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
