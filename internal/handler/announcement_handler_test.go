package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/handler"
	"github.com/noah-isme/membership-portal-api/internal/service"
)

type mockAnnouncementService struct {
	response     dto.AnnouncementListResponse
	lastPage     int
	lastPageSize int
	created      dto.AnnouncementRequest
	createErr    error
}

func (m *mockAnnouncementService) ListActive(_ context.Context, page, pageSize int) (dto.AnnouncementListResponse, error) {
	m.lastPage = page
	m.lastPageSize = pageSize
	return m.response, nil
}

func (m *mockAnnouncementService) AdminList(context.Context, dto.ContentListRequest) (dto.AnnouncementListResponse, error) {
	return m.response, nil
}

func (m *mockAnnouncementService) Create(_ context.Context, req dto.AnnouncementRequest, _ service.Actor) (dto.AnnouncementResponse, error) {
	m.created = req
	if m.createErr != nil {
		return dto.AnnouncementResponse{}, m.createErr
	}
	return dto.AnnouncementResponse{ID: 1, Title: req.Title}, nil
}

func (m *mockAnnouncementService) Update(_ context.Context, id uint, req dto.AnnouncementRequest, _ service.Actor) (dto.AnnouncementResponse, error) {
	return dto.AnnouncementResponse{ID: id, Title: req.Title}, nil
}

func (m *mockAnnouncementService) Delete(context.Context, uint, service.Actor) error {
	return nil
}

func TestAnnouncementHandler_ListSetsCacheHeader(t *testing.T) {
	svc := &mockAnnouncementService{response: dto.AnnouncementListResponse{
		Items:    []dto.AnnouncementResponse{{ID: 1, Title: "Welcome"}},
		CacheHit: true,
	}}
	app := fiber.New()
	handler.NewAnnouncementHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/announcements"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/announcements?page=2&page_size=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))
	require.Equal(t, 2, svc.lastPage)
	require.Equal(t, 5, svc.lastPageSize)

	var response struct {
		Success bool                         `json:"success"`
		Data    dto.AnnouncementListResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data.Items, 1)
}

func TestAdminAnnouncementHandler_InvalidIdentifier(t *testing.T) {
	app := fiber.New()
	handler.NewAdminAnnouncementHandler(&mockAnnouncementService{}, zerolog.New(io.Discard)).Register(app.Group("/admin/announcements"))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/announcements/0", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminAnnouncementHandler_CreateConflict(t *testing.T) {
	svc := &mockAnnouncementService{createErr: &service.Error{Kind: service.ErrConflict, Msg: "announcement already exists"}}
	app := fiber.New()
	handler.NewAdminAnnouncementHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/admin/announcements", withUser(1, "admin")))

	req := httptest.NewRequest(http.MethodPost, "/admin/announcements", jsonBody(t, map[string]string{
		"title":     "Camp week",
		"body":      "Bring a tent",
		"starts_at": "2026-10-17T08:00:00Z",
	}))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "Camp week", svc.created.Title)
}
