package system_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountservice "inventory-server-go/internal/domain/account/service"
	"inventory-server-go/internal/domain/auth"
	"inventory-server-go/internal/domain/auth/store"
	"inventory-server-go/internal/domain/eventbus/infrastructure"
	itemservice "inventory-server-go/internal/domain/item/service"
	"inventory-server-go/internal/platform/storage"
	"inventory-server-go/internal/platform/testutil"
	httptransport "inventory-server-go/internal/transport/http"
	"inventory-server-go/internal/transport/http/envelope"
	"inventory-server-go/internal/transport/http/system"
)

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// newStatusAPI builds the status endpoint over a real in-memory database so
// the counts come from actual repositories.
func newStatusAPI(t *testing.T) (*gin.Engine, *itemservice.ItemService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.Config(t)
	env, err := envelope.NewBuilder(cfg.CORS)
	require.NoError(t, err)

	db := testutil.DB(t)
	items := itemservice.NewItemService(storage.NewItemRepository(db))
	accounts := accountservice.NewAccountService(storage.NewAccountRepository(db))
	events := infrastructure.NewEventRepository(db)

	sessions, err := store.New(store.Config{Driver: store.DriverMemory}, store.Dependencies{})
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer("system-test-secret")
	require.NoError(t, err)

	manager, err := auth.NewManager(auth.Options{
		Store:  sessions,
		Logger: noopLogger{},
		Issuer: issuer,
	})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	svc, err := system.NewService(cfg, testutil.Logger(t), env, items, accounts, manager, events)
	require.NoError(t, err)

	engine := gin.New()
	group := engine.Group("/api")
	group.Use(func(c *gin.Context) {
		c.Set(httptransport.ContextAccountID, uint(1))
	})
	require.NoError(t, svc.Register(context.Background(), group))

	return engine, items
}

func getStatus(t *testing.T, engine *gin.Engine) map[string]any {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

func TestStatusReportsRuntimeAndCatalog(t *testing.T) {
	engine, items := newStatusAPI(t)

	_, err := items.CreateItem(context.Background(), "Keyboard", 49.5, "peripherals", 1)
	require.NoError(t, err)
	_, err = items.CreateItem(context.Background(), "Mouse", 19.9, "peripherals", 1)
	require.NoError(t, err)

	got := getStatus(t, engine)

	server, ok := got["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "inventory-server", server["name"])
	assert.NotEmpty(t, server["uptime"])

	rt, ok := got["runtime"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, rt["goVersion"])
	assert.Greater(t, rt["goroutines"].(float64), float64(0))

	catalog, ok := got["catalog"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), catalog["items"])
	assert.Equal(t, float64(0), catalog["accounts"])
}

func TestStatusIncludesSessionStats(t *testing.T) {
	engine, _ := newStatusAPI(t)

	got := getStatus(t, engine)

	sessions, ok := got["sessions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "memory", sessions["type"])
}

func TestStatusOmitsEventsWithoutRepository(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testutil.Config(t)
	env, err := envelope.NewBuilder(cfg.CORS)
	require.NoError(t, err)

	db := testutil.DB(t)
	items := itemservice.NewItemService(storage.NewItemRepository(db))
	accounts := accountservice.NewAccountService(storage.NewAccountRepository(db))

	sessions, err := store.New(store.Config{Driver: store.DriverMemory}, store.Dependencies{})
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer("system-test-secret")
	require.NoError(t, err)
	manager, err := auth.NewManager(auth.Options{Store: sessions, Logger: noopLogger{}, Issuer: issuer})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	svc, err := system.NewService(cfg, testutil.Logger(t), env, items, accounts, manager, nil)
	require.NoError(t, err)

	engine := gin.New()
	group := engine.Group("/api")
	require.NoError(t, svc.Register(context.Background(), group))

	got := getStatus(t, engine)
	_, present := got["events"]
	assert.False(t, present)
}
