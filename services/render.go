package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"procurement-receipt-api/models"
)

// PDFRenderer produces the printable export of a receipt document.
// Approved documents carry the signer's name, the signing date, and the
// signature image when one is on file.
type PDFRenderer struct {
	signatureDir string
}

func NewPDFRenderer(signatureDir string) *PDFRenderer {
	return &PDFRenderer{signatureDir: signatureDir}
}

const (
	pdfMarginMM    = 15.0
	pdfLabelWidth  = 55.0
	pdfContentFont = "Helvetica"
)

func (r *PDFRenderer) newDoc(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(true, pdfMarginMM)
	pdf.AddPage()

	pdf.SetFont(pdfContentFont, "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func (r *PDFRenderer) infoRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont(pdfContentFont, "B", 10)
	pdf.CellFormat(pdfLabelWidth, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont(pdfContentFont, "", 10)
	pdf.MultiCell(0, 7, value, "", "L", false)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2 January 2006")
}

func formatMoney(v float64) string {
	return fmt.Sprintf("Rp %.2f", v)
}

// GoodsReceipt renders the "bapb" export. The inspector argument is the
// reviewer whose signature should appear, nil when none acted yet.
func (r *PDFRenderer) GoodsReceipt(detail *GoodsReceiptDetail, inspector *models.Inspector) ([]byte, error) {
	pdf := r.newDoc("GOODS RECEIPT CERTIFICATE")

	doc := detail.GoodsReceipt
	pdf.SetFont(pdfContentFont, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Number: %s", doc.Number), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	r.infoRow(pdf, "Vendor", doc.Vendor.Name)
	r.infoRow(pdf, "Contract number", doc.ContractNumber)
	r.infoRow(pdf, "Project", doc.ProjectName)
	r.infoRow(pdf, "Contract value", formatMoney(doc.ContractValue))
	r.infoRow(pdf, "Issued", formatDate(doc.IssuedDate))
	r.infoRow(pdf, "Delivered", formatDate(doc.DeliveryDate))
	if doc.Courier != nil && *doc.Courier != "" {
		r.infoRow(pdf, "Courier", *doc.Courier)
	}
	if doc.WorkDescription != "" {
		r.infoRow(pdf, "Description", doc.WorkDescription)
	}
	pdf.Ln(4)

	// Item table.
	pdf.SetFont(pdfContentFont, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(10, 8, "No", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Unit", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Inspection", "1", 1, "L", true, 0, "")

	pdf.SetFont(pdfContentFont, "", 10)
	for i, item := range doc.LineItems {
		pdf.CellFormat(10, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 8, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, item.Unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, item.InspectionStatus, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if doc.InspectionResult != "" {
		r.infoRow(pdf, "Inspection result", doc.InspectionResult)
	}
	if doc.InspectorNote != nil && *doc.InspectorNote != "" {
		r.infoRow(pdf, "Inspector note", *doc.InspectorNote)
	}
	if doc.ApprovalNote != nil && *doc.ApprovalNote != "" {
		r.infoRow(pdf, "Approval note", *doc.ApprovalNote)
	}
	if doc.RejectionReason != nil && *doc.RejectionReason != "" {
		r.infoRow(pdf, "Rejection reason", *doc.RejectionReason)
	}
	r.infoRow(pdf, "Status", strings.ToUpper(doc.Status))

	if doc.Status == StatusApproved && doc.InspectorSignedAt != nil {
		r.signatureBlock(pdf, "Approved by", signerName(inspector, detail.LastInspector), *doc.InspectorSignedAt, signaturePath(r.signatureDir, inspector))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render goods receipt %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

// WorkReceipt renders the "bapp" export with the priced item table.
func (r *PDFRenderer) WorkReceipt(detail *WorkReceiptDetail, executiveName string) ([]byte, error) {
	pdf := r.newDoc("WORK COMPLETION CERTIFICATE")

	doc := detail.WorkReceipt
	pdf.SetFont(pdfContentFont, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Number: %s", doc.Number), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	r.infoRow(pdf, "Vendor", doc.Vendor.Name)
	r.infoRow(pdf, "Contract number", doc.ContractNumber)
	r.infoRow(pdf, "Contract date", formatDate(doc.ContractDate))
	r.infoRow(pdf, "Contract value", formatMoney(doc.ContractValue))
	r.infoRow(pdf, "Work location", doc.WorkLocation)
	if doc.Note != nil && *doc.Note != "" {
		r.infoRow(pdf, "Note", *doc.Note)
	}
	pdf.Ln(4)

	pdf.SetFont(pdfContentFont, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(10, 8, "No", "1", 0, "C", true, 0, "")
	pdf.CellFormat(70, 8, "Work item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(20, 8, "Unit", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont(pdfContentFont, "", 10)
	var grandTotal float64
	for i, item := range doc.LineItems {
		grandTotal += item.Total
		pdf.CellFormat(10, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 8, item.Item, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, item.Unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, formatMoney(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, formatMoney(item.Total), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont(pdfContentFont, "B", 10)
	pdf.CellFormat(120, 8, "Grand total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(60, 8, formatMoney(grandTotal), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	if doc.InspectionResult != "" {
		r.infoRow(pdf, "Inspection result", doc.InspectionResult)
	}
	if doc.ApprovalNote != nil && *doc.ApprovalNote != "" {
		r.infoRow(pdf, "Approval note", *doc.ApprovalNote)
	}
	if doc.RejectionReason != nil && *doc.RejectionReason != "" {
		r.infoRow(pdf, "Rejection reason", *doc.RejectionReason)
	}
	r.infoRow(pdf, "Status", strings.ToUpper(doc.Status))

	if doc.Status == StatusApprovedDireksi && doc.ExecutiveSignedAt != nil {
		r.signatureBlock(pdf, "Approved by", executiveName, *doc.ExecutiveSignedAt, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render work receipt %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) signatureBlock(pdf *fpdf.Fpdf, label, name string, signedAt time.Time, imagePath string) {
	pdf.Ln(10)
	pdf.SetFont(pdfContentFont, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s,", label), "", 1, "R", false, 0, "")

	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			x := pdf.GetX()
			pageW, _ := pdf.GetPageSize()
			pdf.ImageOptions(imagePath, pageW-pdfMarginMM-40, pdf.GetY(), 40, 20, false,
				fpdf.ImageOptions{ReadDpi: true}, 0, "")
			pdf.SetX(x)
			pdf.Ln(22)
		} else {
			pdf.Ln(20)
		}
	} else {
		pdf.Ln(20)
	}

	pdf.SetFont(pdfContentFont, "B", 10)
	pdf.CellFormat(0, 6, name, "", 1, "R", false, 0, "")
	pdf.SetFont(pdfContentFont, "", 10)
	pdf.CellFormat(0, 6, formatDate(signedAt), "", 1, "R", false, 0, "")
}

func signerName(inspector *models.Inspector, fallback string) string {
	if inspector != nil && inspector.Name != "" {
		return inspector.Name
	}
	if fallback != "" {
		return fallback
	}
	return "Inspector"
}

// signaturePath resolves the stored signature file name against the
// signature directory.
func signaturePath(dir string, inspector *models.Inspector) string {
	if inspector == nil || inspector.SignaturePath == nil || *inspector.SignaturePath == "" {
		return ""
	}
	return filepath.Join(dir, *inspector.SignaturePath)
}
