package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// renderPaymentReceipt lays out a single-page A4 receipt for a payment and its submitter.
func renderPaymentReceipt(payment models.Payment, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payment receipt #%d", payment.ID), false)
	pdf.SetCreator("membership-portal-api", false)
	pdf.SetCreationDate(generatedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	rows := [][2]string{
		{"Receipt no.", fmt.Sprintf("%06d", payment.ID)},
		{"Member", payment.User.Name},
		{"Member code", payment.User.Code},
		{"Email", payment.User.Email},
		{"Payment type", strings.ReplaceAll(payment.Type, "_", " ")},
		{"Amount", fmt.Sprintf("%.2f", payment.Amount)},
		{"Submitted", payment.CreatedAt.UTC().Format("2006-01-02 15:04 MST")},
		{"Status", strings.ToUpper(payment.Status)},
	}
	if payment.VerifiedAt != nil {
		rows = append(rows, [2]string{"Verified", payment.VerifiedAt.UTC().Format("2006-01-02 15:04 MST")})
	}
	if payment.RejectionReason != "" {
		rows = append(rows, [2]string{"Reason", payment.RejectionReason})
	}

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(50, 9, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 9, translate(row[1]), "1", 1, "L", false, 0, "")
	}

	if payment.Status == models.PaymentStatusPending {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "This payment has not been verified yet. The receipt becomes final once an administrator approves it.", "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
