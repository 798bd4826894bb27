package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
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

type mockPaymentService struct {
	lastUpload  dto.PaymentUploadRequest
	lastReceipt *multipart.FileHeader
	receiptErr  error
}

func (m *mockPaymentService) Upload(_ context.Context, req dto.PaymentUploadRequest, receipt *multipart.FileHeader, actor service.Actor) (dto.PaymentResponse, error) {
	m.lastUpload = req
	m.lastReceipt = receipt
	return dto.PaymentResponse{ID: 1, UserID: actor.ID, Type: req.Type, Status: "pending"}, nil
}

func (m *mockPaymentService) ListMine(context.Context, uint, int, int) (dto.PaymentListResponse, error) {
	return dto.PaymentListResponse{}, nil
}

func (m *mockPaymentService) List(context.Context, dto.PaymentListRequest) (dto.PaymentListResponse, error) {
	return dto.PaymentListResponse{}, nil
}

func (m *mockPaymentService) Verify(context.Context, uint, dto.PaymentVerifyRequest, service.Actor) (dto.PaymentResponse, error) {
	return dto.PaymentResponse{}, nil
}

func (m *mockPaymentService) Receipt(_ context.Context, id uint, _ service.Actor) ([]byte, string, error) {
	if m.receiptErr != nil {
		return nil, "", m.receiptErr
	}
	return []byte("%PDF-1.3"), "receipt-1.pdf", nil
}

func paymentForm(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("type", "membership_fee"))
	require.NoError(t, writer.WriteField("amount", "150000"))
	part, err := writer.CreateFormFile("receipt", "transfer.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/payments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPaymentHandler_UploadRestrictedToSubmitters(t *testing.T) {
	for role, status := range map[string]int{
		"member":     fiber.StatusForbidden,
		"ambassador": fiber.StatusCreated,
		"president":  fiber.StatusCreated,
	} {
		t.Run(role, func(t *testing.T) {
			svc := &mockPaymentService{}
			app := fiber.New()
			handler.NewPaymentHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/payments", withUser(5, role)))

			resp, err := app.Test(paymentForm(t))
			require.NoError(t, err)
			require.Equal(t, status, resp.StatusCode)
			if status == fiber.StatusCreated {
				require.Equal(t, "membership_fee", svc.lastUpload.Type)
				require.Equal(t, 150000.0, svc.lastUpload.Amount)
				require.NotNil(t, svc.lastReceipt)
				require.Equal(t, "transfer.png", svc.lastReceipt.Filename)
			}
		})
	}
}

func TestPaymentHandler_ReceiptDownload(t *testing.T) {
	app := fiber.New()
	handler.NewPaymentHandler(&mockPaymentService{}, zerolog.New(io.Discard)).Register(app.Group("/payments", withUser(5, "member")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments/1/receipt", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "receipt-1.pdf")
}

func TestPaymentHandler_ReceiptForbidden(t *testing.T) {
	svc := &mockPaymentService{receiptErr: &service.Error{Kind: service.ErrForbidden, Msg: "receipt belongs to another member"}}
	app := fiber.New()
	handler.NewPaymentHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/payments", withUser(6, "member")))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments/1/receipt", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
