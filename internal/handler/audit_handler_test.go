package handler_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/handler"
	"github.com/noah-isme/membership-portal-api/internal/service"
)

type stubAuditService struct {
	events    chan dto.AuditLogResponse
	cancelled atomic.Bool
	lastList  dto.AuditLogListRequest
}

func (s *stubAuditService) Record(context.Context, service.AuditEntry) (dto.AuditLogResponse, error) {
	return dto.AuditLogResponse{}, nil
}

func (s *stubAuditService) List(_ context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	s.lastList = req
	return dto.AuditLogListResponse{Items: []dto.AuditLogResponse{{ID: 1, Action: "payment.verified"}}}, nil
}

func (s *stubAuditService) Subscribe() (<-chan dto.AuditLogResponse, func()) {
	return s.events, func() { s.cancelled.Store(true) }
}

func startFiberServer(t *testing.T, app *fiber.App) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)

	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	})

	return "http://" + listener.Addr().String()
}

func TestAuditHandler_ListFilters(t *testing.T) {
	svc := &stubAuditService{}
	app := fiber.New()
	handler.NewAuditHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/audit-logs"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?action=payment.verified&target_type=payment&actor_id=3&pageSize=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "payment.verified", svc.lastList.Action)
	require.Equal(t, "payment", svc.lastList.TargetType)
	require.Equal(t, uint(3), svc.lastList.ActorID)
	require.Equal(t, 5, svc.lastList.PageSize)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs?actor_id=me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuditHandler_StreamRequiresUpgrade(t *testing.T) {
	app := fiber.New()
	handler.NewAuditHandler(&stubAuditService{}, zerolog.New(io.Discard)).Register(app.Group("/audit-logs"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit-logs/stream", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestAuditHandler_StreamPushesEntries(t *testing.T) {
	svc := &stubAuditService{events: make(chan dto.AuditLogResponse, 1)}
	app := fiber.New()
	handler.NewAuditHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/admin/audit-logs", withUser(1, "superadmin")))

	baseURL := startFiberServer(t, app)
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/admin/audit-logs/stream"

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}

	svc.events <- dto.AuditLogResponse{ID: 7, Action: "camp.bulk_imported", TargetType: "camp"}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received dto.AuditLogResponse
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, uint(7), received.ID)
	require.Equal(t, "camp.bulk_imported", received.Action)

	require.NoError(t, conn.Close())
	require.Eventually(t, svc.cancelled.Load, 2*time.Second, 20*time.Millisecond)
}
