package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"procurement-receipt-api/config"
	"procurement-receipt-api/services"
)

// Shared service set, wired once at startup.
var (
	goodsSvc    *services.GoodsReceiptService
	workSvc     *services.WorkReceiptService
	docSvc      *services.DocumentService
	attachSvc   *services.AttachmentService
	historySvc  *services.HistoryService
	dispatcher  *services.Dispatcher
	pushSender  *services.PushSender
	pdfRenderer *services.PDFRenderer

	uploadDir    string
	signatureDir string
)

// Deps carries everything the handlers need.
type Deps struct {
	Goods       *services.GoodsReceiptService
	Work        *services.WorkReceiptService
	Documents   *services.DocumentService
	Attachments *services.AttachmentService
	History     *services.HistoryService
	Dispatcher  *services.Dispatcher
	Push        *services.PushSender
	Renderer    *services.PDFRenderer

	UploadDir    string
	SignatureDir string
}

// Init wires the handler package. Called once from main before routes
// are registered.
func Init(d Deps) {
	goodsSvc = d.Goods
	workSvc = d.Work
	docSvc = d.Documents
	attachSvc = d.Attachments
	historySvc = d.History
	dispatcher = d.Dispatcher
	pushSender = d.Push
	pdfRenderer = d.Renderer
	uploadDir = d.UploadDir
	signatureDir = d.SignatureDir
}

var kindStatus = map[services.ErrorKind]int{
	services.KindValidationFailed:   http.StatusBadRequest,
	services.KindInvalidState:       http.StatusBadRequest,
	services.KindPreconditionFailed: http.StatusBadRequest,
	services.KindUnauthorized:       http.StatusUnauthorized,
	services.KindForbidden:          http.StatusForbidden,
	services.KindNotFound:           http.StatusNotFound,
	services.KindConflict:           http.StatusConflict,
	services.KindUnavailable:        http.StatusInternalServerError,
}

// respondError maps a service error to its HTTP status and the standard
// error envelope. Raw storage detail is exposed only with DEBUG=true.
func respondError(c *gin.Context, err *services.Error) {
	status, ok := kindStatus[err.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		config.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}

	body := gin.H{
		"kind":    string(err.Kind),
		"message": err.Message,
	}
	if os.Getenv("DEBUG") == "true" && err.Err != nil {
		body["detail"] = err.Err.Error()
	}
	c.JSON(status, gin.H{"error": body})
}

func badRequest(c *gin.Context, msg string) {
	respondError(c, services.ValidationFailed(msg))
}
