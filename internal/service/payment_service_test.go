package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/repository"
	"github.com/noah-isme/membership-portal-api/pkg/storage"
)

func setupPaymentService(t *testing.T) (PaymentService, *stubAuditRecorder, afero.Fs, models.User) {
	t.Helper()

	db := setupServiceDB(t)
	fs := afero.NewMemMapFs()
	audit := &stubAuditRecorder{}
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		storage.NewLocal(fs, "/uploads", testLogger()),
		audit,
		nil,
		testValidator(),
		testLogger(),
	)
	ambassador := seedUser(t, db, "amb@example.com", models.RoleAmbassador, nil)
	return svc, audit, fs, ambassador
}

func TestPaymentUploadStoresReceipt(t *testing.T) {
	svc, _, fs, ambassador := setupPaymentService(t)
	ctx := context.Background()
	actor := Actor{ID: ambassador.ID, Role: ambassador.Role}

	payment, err := svc.Upload(ctx, dto.PaymentUploadRequest{Type: "membership_fee", Amount: 150}, newFileHeader(t, "receipt", "Bank Slip.png", pngPayload), actor)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.True(t, strings.HasPrefix(payment.ReceiptURL, "/uploads/receipts/"))

	stored, err := afero.ReadFile(fs, strings.TrimPrefix(payment.ReceiptURL, "/uploads/"))
	require.NoError(t, err)
	require.True(t, bytes.Equal(pngPayload, stored))

	linked, err := svc.Upload(ctx, dto.PaymentUploadRequest{Type: "donation", Amount: 10, ReceiptURL: "https://bank.example.com/slip/1"}, nil, actor)
	require.NoError(t, err)
	require.Equal(t, "https://bank.example.com/slip/1", linked.ReceiptURL)

	mine, err := svc.ListMine(ctx, ambassador.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, mine.Items, 2)
}

func TestPaymentUploadRejectsInvalidReceipts(t *testing.T) {
	svc, _, _, ambassador := setupPaymentService(t)
	ctx := context.Background()
	actor := Actor{ID: ambassador.ID, Role: ambassador.Role}
	req := dto.PaymentUploadRequest{Type: "camp_fee", Amount: 25}

	_, err := svc.Upload(ctx, req, nil, actor)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Upload(ctx, req, newFileHeader(t, "receipt", "notes.txt", []byte("plain text receipt")), actor)
	require.ErrorIs(t, err, ErrUploadTypeNotAllowed)

	oversized := append(append([]byte{}, pngPayload...), make([]byte, ReceiptMaxBytes)...)
	_, err = svc.Upload(ctx, req, newFileHeader(t, "receipt", "big.png", oversized), actor)
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestPaymentVerifyOnlyOnce(t *testing.T) {
	svc, audit, _, ambassador := setupPaymentService(t)
	ctx := context.Background()
	admin := Actor{ID: 77, Role: models.RoleAdmin}

	payment, err := svc.Upload(ctx, dto.PaymentUploadRequest{Type: "membership_fee", Amount: 90}, newFileHeader(t, "receipt", "slip.pdf", pdfPayload), Actor{ID: ambassador.ID, Role: ambassador.Role})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, payment.ID, dto.PaymentVerifyRequest{Status: "rejected"}, admin)
	require.Error(t, err)

	approved, err := svc.Verify(ctx, payment.ID, dto.PaymentVerifyRequest{Status: "approved", Reason: "matches bank statement"}, admin)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusApproved, approved.Status)
	require.Empty(t, approved.RejectionReason)
	require.NotNil(t, approved.VerifiedBy)
	require.Equal(t, admin.ID, *approved.VerifiedBy)
	require.NotNil(t, approved.VerifiedAt)

	_, err = svc.Verify(ctx, payment.ID, dto.PaymentVerifyRequest{Status: "rejected", Reason: "duplicate"}, admin)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Verify(ctx, 9999, dto.PaymentVerifyRequest{Status: "approved"}, admin)
	require.ErrorIs(t, err, ErrNotFound)

	require.Equal(t, []string{"payment.verified"}, audit.actions())

	list, err := svc.List(ctx, dto.PaymentListRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
}

func TestPaymentReceiptAccess(t *testing.T) {
	svc, _, _, ambassador := setupPaymentService(t)
	ctx := context.Background()
	owner := Actor{ID: ambassador.ID, Role: ambassador.Role}

	payment, err := svc.Upload(ctx, dto.PaymentUploadRequest{Type: "other", Amount: 5, ReceiptURL: "https://bank.example.com/r"}, nil, owner)
	require.NoError(t, err)

	document, name, err := svc.Receipt(ctx, payment.ID, owner)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(document, []byte("%PDF")))
	require.Contains(t, name, ".pdf")

	_, _, err = svc.Receipt(ctx, payment.ID, Actor{ID: ambassador.ID + 1, Role: models.RoleMember})
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.Receipt(ctx, payment.ID, Actor{ID: 500, Role: models.RoleSuperadmin})
	require.NoError(t, err)
}

func TestMediaUploadRecordsAsset(t *testing.T) {
	db := setupServiceDB(t)
	fs := afero.NewMemMapFs()
	audit := &stubAuditRecorder{}
	svc := NewMediaService(storage.NewLocal(fs, "/uploads", testLogger()), repository.NewMediaRepository(db), audit, testLogger())
	ctx := context.Background()
	admin := Actor{ID: 3, Role: models.RoleAdmin}

	uploaded, err := svc.Upload(ctx, newFileHeader(t, "file", "Cover Photo.PNG", pngPayload), admin)
	require.NoError(t, err)
	require.Equal(t, "image/png", uploaded.MimeType)
	require.Equal(t, "cover-photo.png", uploaded.FileName)
	require.Len(t, uploaded.Checksum, 64)

	_, err = svc.Upload(ctx, nil, admin)
	require.ErrorIs(t, err, ErrUploadMissing)

	list, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, []string{"media.uploaded"}, audit.actions())
}
