package system

import (
	"context"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	accountservice "inventory-server-go/internal/domain/account/service"
	"inventory-server-go/internal/domain/auth"
	eventrepo "inventory-server-go/internal/domain/eventbus/repository"
	itemservice "inventory-server-go/internal/domain/item/service"
	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/logging"
	"inventory-server-go/internal/transport/http/envelope"
)

// Service reports server health and inventory figures.
type Service struct {
	config    *config.Config
	logger    *logging.Logger
	envelope  *envelope.Builder
	items     *itemservice.ItemService
	accounts  *accountservice.AccountService
	sessions  *auth.Manager
	events    eventrepo.EventRepository
	startedAt time.Time
}

// NewService creates the system HTTP service. The event repository may be
// nil; the events block is then omitted from status responses.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	env *envelope.Builder,
	items *itemservice.ItemService,
	accounts *accountservice.AccountService,
	sessions *auth.Manager,
	events eventrepo.EventRepository,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "logger is required")
	}
	if env == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "envelope builder is required")
	}
	if items == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "item service is required")
	}
	if accounts == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "account service is required")
	}
	if sessions == nil {
		return nil, errors.New(errors.KindConfig, "system.new", "session manager is required")
	}

	return &Service{
		config:    cfg,
		logger:    logger,
		envelope:  env,
		items:     items,
		accounts:  accounts,
		sessions:  sessions,
		events:    events,
		startedAt: time.Now(),
	}, nil
}

// Register mounts the status route on the secured API group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/system/status", s.handleStatus)

	s.logger.InfoTag("HTTP", "system routes registered")
	return nil
}

// handleStatus assembles the status view. Every optional probe degrades to
// an omitted field on failure.
// @Summary Server status
// @Description Uptime, runtime and host gauges plus catalog and session figures
// @Tags system
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} StatusView
// @Failure 401 {object} envelope.ErrorBody
// @Router /system/status [get]
func (s *Service) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	view := StatusView{
		Server: ServerStatus{
			Name:      s.config.Server.Name,
			StartedAt: s.startedAt,
			Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		},
		Runtime: runtimeStatus(),
	}

	if host, err := probeHost(ctx); err != nil {
		s.logger.WarnTag("SYSTEM", "host probe failed: %v", err)
	} else {
		view.Host = host
	}

	if catalog, err := s.probeCatalog(ctx); err != nil {
		s.logger.WarnTag("SYSTEM", "catalog probe failed: %v", err)
	} else {
		view.Catalog = catalog
	}

	if stats, err := s.sessions.Stats(ctx); err != nil {
		s.logger.WarnTag("SYSTEM", "session stats failed: %v", err)
	} else {
		view.Sessions = stats
	}

	if s.events != nil {
		if stats, err := s.events.GetEventStats(ctx); err != nil {
			s.logger.WarnTag("SYSTEM", "event stats failed: %v", err)
		} else {
			view.Events = stats
		}
	}

	envelope.Write(c, s.envelope.Success(view))
}

func (s *Service) probeCatalog(ctx context.Context) (*CatalogStatus, error) {
	items, err := s.items.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogStatus{Items: items, Accounts: accounts}, nil
}

func runtimeStatus() RuntimeStatus {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return RuntimeStatus{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
		HeapAlloc:  ms.HeapAlloc,
	}
}

func probeHost(ctx context.Context) (*HostStatus, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	host := &HostStatus{
		MemoryPercent: vm.UsedPercent,
		MemoryUsed:    vm.Used,
		MemoryTotal:   vm.Total,
	}
	if len(percents) > 0 {
		host.CPUPercent = percents[0]
	}
	return host, nil
}
