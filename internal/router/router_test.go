package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/membership-portal-api/internal/config"
	"github.com/noah-isme/membership-portal-api/internal/database"
	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/handler"
	"github.com/noah-isme/membership-portal-api/internal/middleware"
	"github.com/noah-isme/membership-portal-api/internal/repository"
	"github.com/noah-isme/membership-portal-api/internal/router"
	"github.com/noah-isme/membership-portal-api/internal/service"
)

const (
	accessSecret  = "router-access"
	refreshSecret = "router-refresh"
)

var routeParam = regexp.MustCompile(`:[A-Za-z_]+`)

func testConfig() config.Config {
	return config.Config{
		AppName:            "Membership Portal Test",
		AppEnv:             "test",
		JWTSecret:          accessSecret,
		JWTRefreshSecret:   refreshSecret,
		SuperadminPasscode: "root-pass",
		UserCodePrefix:     "MBR",
	}
}

func accessToken(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"role": role,
		"typ":  "access",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(accessSecret))
	require.NoError(t, err)
	return token
}

// skeletonApp registers every route with handlers whose services are never reached.
func skeletonApp() *fiber.App {
	logger := zerolog.Nop()
	app := fiber.New()
	router.Register(app, testConfig(), router.Dependencies{
		AuthHandler:              handler.NewAuthHandler(nil, logger),
		UserHandler:              handler.NewUserHandler(nil, logger),
		AdminUserHandler:         handler.NewAdminUserHandler(nil, logger),
		AssociationHandler:       handler.NewAssociationHandler(nil, logger),
		ExamHandler:              handler.NewExamHandler(nil, nil, nil, logger),
		AdminExamHandler:         handler.NewAdminExamHandler(nil, nil, logger),
		PaymentHandler:           handler.NewPaymentHandler(nil, logger),
		AdminPaymentHandler:      handler.NewAdminPaymentHandler(nil, logger),
		AnnouncementHandler:      handler.NewAnnouncementHandler(nil, logger),
		AdminAnnouncementHandler: handler.NewAdminAnnouncementHandler(nil, logger),
		GalleryHandler:           handler.NewGalleryHandler(nil, logger),
		AdminGalleryHandler:      handler.NewAdminGalleryHandler(nil, logger),
		BlogHandler:              handler.NewBlogHandler(nil, logger),
		AdminBlogHandler:         handler.NewAdminBlogHandler(nil, logger),
		HomepageHandler:          handler.NewHomepageHandler(nil, logger),
		AdvertisementHandler:     handler.NewAdvertisementHandler(nil, logger),
		UploadHandler:            handler.NewUploadHandler(nil, logger),
		CampHandler:              handler.NewCampHandler(nil, logger),
		AuditHandler:             handler.NewAuditHandler(nil, logger),
		ExportHandler:            handler.NewExportHandler(nil, logger),
		DashboardHandler:         handler.NewDashboardHandler(nil, logger),
		SeedHandler:              handler.NewSeedHandler(nil, logger),
		JWTMiddleware:            middleware.JWTProtected(accessSecret),
	})
	return app
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := skeletonApp()

	checked := 0
	for _, route := range app.GetRoutes(true) {
		if !strings.HasPrefix(route.Path, "/api/v1/admin") || route.Method == fiber.MethodHead {
			continue
		}
		path := routeParam.ReplaceAllString(route.Path, "1")
		checked++

		anonymous := httptest.NewRequest(route.Method, path, nil)
		resp, err := app.Test(anonymous, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s without token", route.Method, path)

		for _, role := range []string{"member", "ambassador", "president"} {
			req := httptest.NewRequest(route.Method, path, nil)
			req.Header.Set("Authorization", "Bearer "+accessToken(t, 9, role))
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusForbidden, resp.StatusCode, "%s %s as %s", route.Method, path, role)
		}
	}
	require.Greater(t, checked, 40)
}

func TestSeedRouteIsSuperadminOnly(t *testing.T) {
	app := skeletonApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, 2, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHealthIsPublic(t *testing.T) {
	app := skeletonApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Membership Portal Test", resp.Header.Get("X-Application"))

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decode(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "test", payload.Data.Environment)
	require.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestMemberRoutesRequireToken(t *testing.T) {
	app := skeletonApp()

	for _, path := range []string{"/api/v1/users/me", "/api/v1/exams", "/api/v1/payments/me", "/api/v1/camps", "/api/v1/dashboard"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target), string(body))
}

func call(t *testing.T, app *fiber.App, method, path, token string, payload interface{}, status int, target interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	decode(t, resp, &env)
	require.Equal(t, status, resp.StatusCode, "%s %s: %s", method, path, env.Message)
	if target != nil {
		require.NoError(t, json.Unmarshal(env.Data, target))
	}
}

func integrationApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := testConfig()
	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(db)
	associations := repository.NewAssociationRepository(db)
	exams := repository.NewExamRepository(db)
	attempts := repository.NewAttemptRepository(db)
	results := repository.NewExamResultRepository(db)

	audit := service.NewAuditService(repository.NewAuditLogRepository(db), nil, cfg.RealtimeChannel, logger)
	authService := service.NewAuthService(users, associations, repository.NewRefreshTokenRepository(db), audit, validate, service.AuthConfig{
		AccessSecret:       cfg.JWTSecret,
		RefreshSecret:      cfg.JWTRefreshSecret,
		SuperadminPasscode: cfg.SuperadminPasscode,
		UserCodePrefix:     cfg.UserCodePrefix,
		BcryptCost:         4,
	}, logger)
	examService := service.NewExamService(exams, validate, audit, logger)
	attemptService := service.NewAttemptService(exams, attempts, validate, logger)
	resultService := service.NewResultService(results, audit, nil, time.Minute, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		ExamHandler:      handler.NewExamHandler(examService, attemptService, resultService, logger),
		AdminExamHandler: handler.NewAdminExamHandler(examService, resultService, logger),
		AdminUserHandler: handler.NewAdminUserHandler(service.NewUserService(users, validate, audit, logger), logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})
	return app
}

func TestExamResultPublicationFlow(t *testing.T) {
	app := integrationApp(t)

	var admin dto.AuthResponse
	call(t, app, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Root", Email: "root@example.com", Password: "supersecret", Role: "superadmin", Passcode: "root-pass",
	}, fiber.StatusCreated, &admin)

	var member dto.AuthResponse
	call(t, app, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Name: "Member", Email: "member@example.com", Password: "supersecret",
	}, fiber.StatusCreated, &member)

	adminToken := admin.Tokens.AccessToken
	memberToken := member.Tokens.AccessToken

	call(t, app, http.MethodGet, "/api/v1/admin/users", memberToken, nil, fiber.StatusForbidden, nil)

	var exam dto.ExamResponse
	call(t, app, http.MethodPost, "/api/v1/admin/exams", adminToken, dto.ExamRequest{
		Title:     "Ambassador onboarding",
		PassScore: 50,
		IsActive:  true,
		Questions: []dto.ExamQuestionRequest{
			{Prompt: "First question", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 10},
			{Prompt: "Second question", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 10},
		},
	}, fiber.StatusCreated, &exam)
	require.Len(t, exam.Questions, 2)

	var attempt dto.AttemptResponse
	call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/exams/%d/attempts", exam.ID), memberToken, nil, fiber.StatusCreated, &attempt)

	var resumed dto.AttemptResponse
	call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/exams/%d/attempts", exam.ID), memberToken, nil, fiber.StatusOK, &resumed)
	require.Equal(t, attempt.ID, resumed.ID)

	answers := map[string]int{
		fmt.Sprintf("%d", exam.Questions[0].ID): 0,
		fmt.Sprintf("%d", exam.Questions[1].ID): 0,
	}
	var graded dto.AttemptResponse
	call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/exams/attempts/%d/submit", attempt.ID), memberToken, dto.SubmitAttemptRequest{Answers: answers}, fiber.StatusOK, &graded)
	require.NotNil(t, graded.Score)
	require.InDelta(t, 50, *graded.Score, 0.001)

	call(t, app, http.MethodPost, fmt.Sprintf("/api/v1/exams/attempts/%d/submit", attempt.ID), memberToken, dto.SubmitAttemptRequest{Answers: answers}, fiber.StatusConflict, nil)

	var mine []dto.ExamResultResponse
	call(t, app, http.MethodGet, "/api/v1/exams/results/me", memberToken, nil, fiber.StatusOK, &mine)
	require.Empty(t, mine)

	var pending []dto.ExamResultResponse
	call(t, app, http.MethodGet, fmt.Sprintf("/api/v1/admin/exam-results?exam_id=%d", exam.ID), adminToken, nil, fiber.StatusOK, &pending)
	require.Len(t, pending, 1)
	require.False(t, pending[0].IsPublished)

	call(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/admin/exam-results/%d/publish", pending[0].ID), adminToken, nil, fiber.StatusOK, nil)

	call(t, app, http.MethodGet, "/api/v1/exams/results/me", memberToken, nil, fiber.StatusOK, &mine)
	require.Len(t, mine, 1)
	require.True(t, mine[0].Passed)

	call(t, app, http.MethodPatch, fmt.Sprintf("/api/v1/admin/exam-results/%d/unpublish", pending[0].ID), adminToken, nil, fiber.StatusOK, nil)
	call(t, app, http.MethodGet, "/api/v1/exams/results/me", memberToken, nil, fiber.StatusOK, &mine)
	require.Empty(t, mine)
}
