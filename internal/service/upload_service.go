package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/models"
	"github.com/noah-isme/membership-portal-api/internal/observability"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadMissing indicates the multipart field was absent.
	ErrUploadMissing = errors.New("file is required")
)

// Upload size caps.
const (
	ReceiptMaxBytes     int64 = 5 << 20
	MediaMaxBytes       int64 = 10 << 20
	SpreadsheetMaxBytes int64 = 2 << 20
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// uploadPolicy describes how a kind of upload is validated.
type uploadPolicy struct {
	kind    string
	maxSize int64
	allowed func(mime string) bool
}

var (
	receiptPolicy     = uploadPolicy{kind: "receipt", maxSize: ReceiptMaxBytes, allowed: isImageOrPDF}
	mediaPolicy       = uploadPolicy{kind: "media", maxSize: MediaMaxBytes, allowed: isImageOrPDF}
	spreadsheetPolicy = uploadPolicy{kind: "spreadsheet", maxSize: SpreadsheetMaxBytes, allowed: isSpreadsheet}
)

// uploadedFile is a validated upload held in memory.
type uploadedFile struct {
	name     string
	mime     string
	payload  []byte
	checksum string
}

// readUpload enforces the size cap and sniffs the content type before anything is stored.
func readUpload(file *multipart.FileHeader, policy uploadPolicy, span trace.Span) (uploadedFile, error) {
	if file == nil {
		span.SetAttributes(attribute.Bool("upload.file_present", false))
		return uploadedFile{}, ErrUploadMissing
	}
	span.SetAttributes(
		attribute.String("upload.kind", policy.kind),
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
		attribute.Int64("upload.max_bytes", policy.maxSize),
	)

	if file.Size > policy.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return uploadedFile{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return uploadedFile{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, policy.maxSize+1)); err != nil {
		return uploadedFile{}, err
	}
	if int64(buf.Len()) > policy.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return uploadedFile{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	mime := strings.ToLower(detected.String())
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	span.SetAttributes(attribute.String("upload.detected_mime", mime))
	if !policy.allowed(mime) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return uploadedFile{}, ErrUploadTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())
	return uploadedFile{
		name:     sanitizeFileName(file.Filename, detected.Extension()),
		mime:     mime,
		payload:  buf.Bytes(),
		checksum: hex.EncodeToString(checksum[:]),
	}, nil
}

// storeUpload writes a validated upload below folder and returns its URL.
func storeUpload(ctx context.Context, storage FileStorage, folder string, file uploadedFile, policy uploadPolicy) (string, error) {
	if storage == nil {
		return "", errors.New("file storage is not configured")
	}
	url, err := storage.Upload(ctx, folder+"/"+file.name, bytes.NewReader(file.payload))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return "", err
	}
	observability.Uploads().WithLabelValues(policy.kind, mimeFamily(file.mime)).Inc()
	return url, nil
}

func sanitizeFileName(name, fallbackExt string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = fallbackExt
	}
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func mimeFamily(m string) string {
	if strings.HasPrefix(m, "image/") {
		return "image"
	}
	return m
}

func isImageOrPDF(m string) bool {
	return strings.HasPrefix(m, "image/") || m == "application/pdf"
}

// Some xlsx writers order zip entries so that sniffing only sees a plain archive.
func isSpreadsheet(m string) bool {
	return m == xlsxMime || m == "application/zip"
}

// MediaService stores administrator uploads used by content pages.
type MediaService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, actor Actor) (dto.UploadResponse, error)
	List(ctx context.Context, page, pageSize int) (dto.MediaListResponse, error)
}

type mediaService struct {
	storage FileStorage
	repo    repository.MediaRepository
	audit   AuditRecorder
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewMediaService constructs the media service.
func NewMediaService(storage FileStorage, repo repository.MediaRepository, audit AuditRecorder, logger zerolog.Logger) MediaService {
	return &mediaService{
		storage: storage,
		repo:    repo,
		audit:   audit,
		logger:  logger.With().Str("component", "media_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/membership-portal-api/internal/service/media"),
	}
}

func (s *mediaService) Upload(ctx context.Context, file *multipart.FileHeader, actor Actor) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	upload, err := readUpload(file, mediaPolicy, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, err
	}

	url, err := storeUpload(ctx, s.storage, "media", upload, mediaPolicy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadResponse{}, err
	}

	asset := models.MediaAsset{
		UserID:    uintPtr(actor.ID),
		FileName:  upload.name,
		URL:       url,
		MimeType:  upload.mime,
		SizeBytes: int64(len(upload.payload)),
		Checksum:  upload.checksum,
	}
	if err := s.repo.Create(ctx, &asset); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}
	span.SetStatus(codes.Ok, "stored")

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "media.uploaded",
		TargetType: "media",
		TargetID:   uintPtr(asset.ID),
		Metadata:   map[string]interface{}{"file_name": asset.FileName, "mime_type": asset.MimeType, "size_bytes": asset.SizeBytes},
	})
	return newUploadResponse(asset), nil
}

func (s *mediaService) List(ctx context.Context, page, pageSize int) (dto.MediaListResponse, error) {
	page = normalizePage(page)
	pageSize = clampPageSize(pageSize)

	assets, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return dto.MediaListResponse{}, err
	}
	items := make([]dto.UploadResponse, 0, len(assets))
	for _, asset := range assets {
		items = append(items, newUploadResponse(asset))
	}
	return dto.MediaListResponse{Items: items, Pagination: buildPagination(page, pageSize, total)}, nil
}

func newUploadResponse(asset models.MediaAsset) dto.UploadResponse {
	return dto.UploadResponse{
		ID:        asset.ID,
		URL:       asset.URL,
		SizeBytes: asset.SizeBytes,
		MimeType:  asset.MimeType,
		Checksum:  asset.Checksum,
		FileName:  asset.FileName,
	}
}
