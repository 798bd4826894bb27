package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/membership-portal-api/internal/dto"
	"github.com/noah-isme/membership-portal-api/internal/repository"
)

const exportBatchSize = 500

// Export is a generated spreadsheet ready to be sent as an attachment.
type Export struct {
	FileName string
	Content  []byte
}

// ExportService renders admin listings as xlsx workbooks.
type ExportService interface {
	Users(ctx context.Context, req dto.AdminUserListRequest, actor Actor) (Export, error)
	Payments(ctx context.Context, req dto.PaymentListRequest, actor Actor) (Export, error)
	ExamResults(ctx context.Context, req dto.ExamResultListRequest, actor Actor) (Export, error)
	// CampRegistrations exports a single camp when campID is set, otherwise every registration.
	CampRegistrations(ctx context.Context, campID uint, actor Actor) (Export, error)
}

type exportService struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	results  repository.ExamResultRepository
	camps    repository.CampRepository
	audit    AuditRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(users repository.UserRepository, payments repository.PaymentRepository, results repository.ExamResultRepository, camps repository.CampRepository, audit AuditRecorder, logger zerolog.Logger) ExportService {
	return &exportService{
		users:    users,
		payments: payments,
		results:  results,
		camps:    camps,
		audit:    audit,
		logger:   logger.With().Str("component", "export_service").Logger(),
		now:      time.Now,
	}
}

func (s *exportService) Users(ctx context.Context, req dto.AdminUserListRequest, actor Actor) (Export, error) {
	filter := repository.UserFilter{
		Search: strings.TrimSpace(req.Search),
		Role:   strings.ToLower(strings.TrimSpace(req.Role)),
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
	}
	if req.AssociationID > 0 {
		filter.AssociationID = uintPtr(req.AssociationID)
	}

	sheet := newSheetWriter("Users", []interface{}{"ID", "Code", "Name", "Email", "Role", "Status", "Phone", "Association ID", "Created At"})
	for page := 1; ; page++ {
		filter.Page, filter.PageSize = page, exportBatchSize
		users, total, err := s.users.List(ctx, filter)
		if err != nil {
			return Export{}, err
		}
		for _, user := range users {
			association := ""
			if user.AssociationID != nil {
				association = fmt.Sprint(*user.AssociationID)
			}
			sheet.append(user.ID, user.Code, user.Name, user.Email, user.Role, user.Status, user.Phone, association, formatExportTime(user.CreatedAt))
		}
		if lastBatch(page, len(users), total) {
			break
		}
	}
	return s.finish(ctx, sheet, "users", actor)
}

func (s *exportService) Payments(ctx context.Context, req dto.PaymentListRequest, actor Actor) (Export, error) {
	filter := repository.PaymentFilter{
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
		Type:   strings.ToLower(strings.TrimSpace(req.Type)),
	}
	if req.UserID > 0 {
		filter.UserID = uintPtr(req.UserID)
	}

	sheet := newSheetWriter("Payments", []interface{}{"ID", "User ID", "Member", "Email", "Type", "Amount", "Status", "Receipt URL", "Verified By", "Verified At", "Rejection Reason", "Created At"})
	for page := 1; ; page++ {
		filter.Page, filter.PageSize = page, exportBatchSize
		payments, total, err := s.payments.List(ctx, filter)
		if err != nil {
			return Export{}, err
		}
		for _, payment := range payments {
			verifiedBy, verifiedAt := "", ""
			if payment.VerifiedBy != nil {
				verifiedBy = fmt.Sprint(*payment.VerifiedBy)
			}
			if payment.VerifiedAt != nil {
				verifiedAt = formatExportTime(*payment.VerifiedAt)
			}
			sheet.append(payment.ID, payment.UserID, payment.User.Name, payment.User.Email, payment.Type, payment.Amount,
				payment.Status, payment.ReceiptURL, verifiedBy, verifiedAt, payment.RejectionReason, formatExportTime(payment.CreatedAt))
		}
		if lastBatch(page, len(payments), total) {
			break
		}
	}
	return s.finish(ctx, sheet, "payments", actor)
}

func (s *exportService) ExamResults(ctx context.Context, req dto.ExamResultListRequest, actor Actor) (Export, error) {
	filter := repository.ExamResultFilter{Published: req.Published}
	if req.ExamID > 0 {
		filter.ExamID = uintPtr(req.ExamID)
	}
	if req.UserID > 0 {
		filter.UserID = uintPtr(req.UserID)
	}

	sheet := newSheetWriter("Exam Results", []interface{}{"ID", "Attempt ID", "Exam", "User ID", "Member", "Email", "Score", "Passed", "Late", "Published", "Created At"})
	for page := 1; ; page++ {
		filter.Page, filter.PageSize = page, exportBatchSize
		results, total, err := s.results.List(ctx, filter)
		if err != nil {
			return Export{}, err
		}
		for _, result := range results {
			sheet.append(result.ID, result.AttemptID, result.Exam.Title, result.UserID, result.User.Name, result.User.Email,
				result.Score, result.Passed, result.Late, result.IsPublished, formatExportTime(result.CreatedAt))
		}
		if lastBatch(page, len(results), total) {
			break
		}
	}
	return s.finish(ctx, sheet, "exam-results", actor)
}

func (s *exportService) CampRegistrations(ctx context.Context, campID uint, actor Actor) (Export, error) {
	var campFilter *uint
	if campID > 0 {
		if _, err := s.camps.GetByID(ctx, campID); err != nil {
			return Export{}, translateStoreError(err, "camp")
		}
		campFilter = uintPtr(campID)
	}

	sheet := newSheetWriter("Registrations", []interface{}{"ID", "Camp ID", "User ID", "Member", "Email", "Source", "Registered By", "Registered At"})
	for page := 1; ; page++ {
		registrations, total, err := s.camps.ListRegistrations(ctx, campFilter, page, exportBatchSize)
		if err != nil {
			return Export{}, err
		}
		for _, registration := range registrations {
			sheet.append(registration.ID, registration.CampID, registration.UserID, registration.User.Name, registration.User.Email,
				registration.Source, registration.RegisteredBy, formatExportTime(registration.CreatedAt))
		}
		if lastBatch(page, len(registrations), total) {
			break
		}
	}
	return s.finish(ctx, sheet, "camp-registrations", actor)
}

func (s *exportService) finish(ctx context.Context, sheet *sheetWriter, kind string, actor Actor) (Export, error) {
	content, err := sheet.bytes()
	if err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("failed to render export")
		return Export{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Actor:      actor,
		Action:     "export.generated",
		TargetType: "export",
		Metadata:   map[string]interface{}{"kind": kind, "rows": sheet.rows - 1},
	})
	return Export{
		FileName: fmt.Sprintf("%s-%s.xlsx", kind, s.now().UTC().Format("20060102-150405")),
		Content:  content,
	}, nil
}

func lastBatch(page, size int, total int64) bool {
	return size == 0 || int64(page*exportBatchSize) >= total
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// sheetWriter appends rows to the single sheet of an in-memory workbook.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	rows  int
	err   error
}

func newSheetWriter(sheet string, header []interface{}) *sheetWriter {
	file := excelize.NewFile()
	w := &sheetWriter{file: file, sheet: sheet}
	w.err = file.SetSheetName("Sheet1", sheet)
	w.append(header...)
	if w.err == nil {
		w.err = file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	return w
}

func (w *sheetWriter) append(values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.rows+1)
	if err != nil {
		w.err = err
		return
	}
	row := values
	w.err = w.file.SetSheetRow(w.sheet, cell, &row)
	w.rows++
}

func (w *sheetWriter) bytes() ([]byte, error) {
	defer w.file.Close()
	if w.err != nil {
		return nil, w.err
	}
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
