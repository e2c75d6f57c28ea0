package items

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-server-go/internal/domain/item/service"
	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/logging"
	httptransport "inventory-server-go/internal/transport/http"
	"inventory-server-go/internal/transport/http/envelope"
)

// Service is the HTTP transport for the item catalog.
type Service struct {
	config   *config.Config
	logger   *logging.Logger
	envelope *envelope.Builder
	items    *service.ItemService
}

// NewService creates the item HTTP service.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	env *envelope.Builder,
	items *service.ItemService,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "items.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "items.new", "logger is required")
	}
	if env == nil {
		return nil, errors.New(errors.KindConfig, "items.new", "envelope builder is required")
	}
	if items == nil {
		return nil, errors.New(errors.KindConfig, "items.new", "item service is required")
	}

	return &Service{
		config:   cfg,
		logger:   logger,
		envelope: env,
		items:    items,
	}, nil
}

// Register mounts the item routes on the secured API group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.POST("/items", s.handleCreate)
	router.GET("/items", s.handleList)
	router.GET("/items/all", s.handleAll)
	router.GET("/items/:id", s.handleGet)
	router.PUT("/items/:id", s.handleUpdate)
	router.DELETE("/items/:id", s.handleDelete)

	s.logger.InfoTag("HTTP", "item routes registered")
	return nil
}

// handleCreate registers a new item owned by the caller.
// @Summary Create item
// @Description Creates an inventory item owned by the authenticated account
// @Tags items
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param body body ItemPayload true "item fields"
// @Success 200 {object} ItemView
// @Failure 400 {object} envelope.ErrorBody
// @Failure 401 {object} envelope.ErrorBody
// @Router /items [post]
func (s *Service) handleCreate(c *gin.Context) {
	ownerID, ok := httptransport.AccountID(c)
	if !ok {
		s.unauthorized(c)
		return
	}

	var payload ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	item, err := s.items.CreateItem(c.Request.Context(), payload.Name, payload.Price, payload.Category, ownerID)
	if err != nil {
		s.fail(c, "create", err)
		return
	}

	envelope.Write(c, s.envelope.Success(item))
}

// handleList returns the caller's items.
// @Summary List own items
// @Tags items
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} ItemView
// @Failure 401 {object} envelope.ErrorBody
// @Router /items [get]
func (s *Service) handleList(c *gin.Context) {
	ownerID, ok := httptransport.AccountID(c)
	if !ok {
		s.unauthorized(c)
		return
	}

	list, err := s.items.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		s.fail(c, "list", err)
		return
	}

	envelope.Write(c, s.envelope.Success(list))
}

// handleAll returns the full catalog across owners.
// @Summary List all items
// @Tags items
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} ItemView
// @Failure 401 {object} envelope.ErrorBody
// @Router /items/all [get]
func (s *Service) handleAll(c *gin.Context) {
	list, err := s.items.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, "all", err)
		return
	}

	envelope.Write(c, s.envelope.Success(list))
}

// handleGet returns a single item by id.
// @Summary Get item
// @Tags items
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "item id"
// @Success 200 {object} ItemView
// @Failure 404 {object} envelope.ErrorBody
// @Router /items/{id} [get]
func (s *Service) handleGet(c *gin.Context) {
	item, err := s.items.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "get", err)
		return
	}

	envelope.Write(c, s.envelope.Success(item))
}

// handleUpdate replaces the mutable fields of an item.
// @Summary Update item
// @Tags items
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "item id"
// @Param body body ItemPayload true "item fields"
// @Success 200 {object} ItemView
// @Failure 400 {object} envelope.ErrorBody
// @Failure 404 {object} envelope.ErrorBody
// @Router /items/{id} [put]
func (s *Service) handleUpdate(c *gin.Context) {
	var payload ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	item, err := s.items.UpdateItem(c.Request.Context(), c.Param("id"), payload.Name, payload.Price, payload.Category)
	if err != nil {
		s.fail(c, "update", err)
		return
	}

	envelope.Write(c, s.envelope.Success(item))
}

// handleDelete removes an item. The success envelope carries a null body
// since there is nothing to return.
// @Summary Delete item
// @Tags items
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "item id"
// @Success 200
// @Failure 404 {object} envelope.ErrorBody
// @Router /items/{id} [delete]
func (s *Service) handleDelete(c *gin.Context) {
	if err := s.items.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "delete", err)
		return
	}

	envelope.Write(c, s.envelope.Success(nil))
}

func (s *Service) unauthorized(c *gin.Context) {
	envelope.Write(c, s.envelope.FailureStatus(http.StatusUnauthorized, "unauthorized", "missing account identity"))
}

func (s *Service) badRequest(c *gin.Context, message string) {
	envelope.Write(c, s.envelope.FailureStatus(http.StatusBadRequest, "bad_request", message))
}

// fail logs and renders a domain error. Expected rejections stay at debug,
// unexpected ones are errors.
func (s *Service) fail(c *gin.Context, op string, err error) {
	switch errors.KindOf(err) {
	case errors.KindNotFound, errors.KindDomain, errors.KindConflict, errors.KindAuth:
		s.logger.DebugTag("ITEMS", "%s rejected: %v", op, err)
	default:
		s.logger.ErrorTag("ITEMS", "%s failed: %v", op, err)
	}
	httptransport.WriteError(c, s.envelope, err)
}

