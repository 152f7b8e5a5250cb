package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/metrics"
	"github.com/giovaniif/items/infra/requestid"
	"github.com/giovaniif/items/use_cases/create"
	"github.com/giovaniif/items/use_cases/get"
	"github.com/giovaniif/items/use_cases/remove"
	"github.com/giovaniif/items/use_cases/update"
)

type itemHandlers struct {
	get    *get.Get
	create *create.Create
	update *update.Update
	remove *remove.Remove

	logger         *zap.Logger
	metrics        *metrics.Metrics
	requestTimeout time.Duration
}

func (h *itemHandlers) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

func (h *itemHandlers) getItem(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	out, err := h.get.Get(ctx, get.Input{ItemId: c.Param("item_id")})
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	h.metrics.ObserveOperation("get", "ok")
	c.JSON(http.StatusOK, out.Data)
}

func (h *itemHandlers) createItem(c *gin.Context) {
	body, ok := bindObject(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	out, err := h.create.Create(ctx, create.Input{ItemId: c.Param("item_id"), Data: body})
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	h.metrics.ObserveOperation("create", "ok")
	c.JSON(http.StatusCreated, out.Data)
}

func (h *itemHandlers) updateItem(c *gin.Context) {
	body, ok := bindObject(c)
	if !ok {
		return
	}
	ctx, cancel := h.context(c)
	defer cancel()

	out, err := h.update.Update(ctx, update.Input{ItemId: c.Param("item_id"), Data: body})
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	h.metrics.ObserveOperation("update", "ok")
	c.JSON(http.StatusOK, out.Data)
}

func (h *itemHandlers) deleteItem(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.remove.Remove(ctx, remove.Input{ItemId: c.Param("item_id")}); err != nil {
		h.fail(c, "delete", err)
		return
	}
	h.metrics.ObserveOperation("delete", "ok")
	c.Status(http.StatusNoContent)
}

// bindObject accepts exactly one JSON object as the body.
func bindObject(c *gin.Context) (map[string]any, bool) {
	body, err := item.ParseData(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body: " + err.Error()})
		return nil, false
	}
	return body, true
}

func (h *itemHandlers) fail(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, item.ErrNotFound):
		h.metrics.ObserveOperation(operation, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, item.ErrAlreadyExists):
		h.metrics.ObserveOperation(operation, "already_exists")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item already exists"})
	case errors.Is(err, item.ErrInvalidId):
		h.metrics.ObserveOperation(operation, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item id is required"})
	default:
		h.metrics.ObserveOperation(operation, "error")
		_ = c.Error(err)
		h.logger.Error("Item operation failed",
			zap.String("operation", operation),
			zap.String("item_id", c.Param("item_id")),
			zap.String("request_id", requestid.FromContext(c.Request.Context())),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
