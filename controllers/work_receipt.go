package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

// ListWorkReceipts returns the paginated, filtered list.
func ListWorkReceipts(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	rows, pagination, err := workSvc.List(actor, listQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": pagination})
}

// OverviewDireksi lists decided work receipts for the executive
// dashboard.
func OverviewDireksi(c *gin.Context) {
	rows, pagination, err := workSvc.OverviewDecided(listQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": pagination})
}

// GetWorkReceipt returns one document with timeline and attachments.
func GetWorkReceipt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	detail, err := workSvc.Get(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// CreateWorkReceipt creates a draft.
func CreateWorkReceipt(c *gin.Context) {
	var in services.WorkReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := workSvc.Create(actor, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

// UpdateWorkReceipt rewrites a draft.
func UpdateWorkReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.WorkReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := workSvc.Update(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// DeleteWorkReceipt removes a draft and its history and attachments.
func DeleteWorkReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(c)
	if err := workSvc.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// SubmitWorkReceipt moves a draft to submitted.
func SubmitWorkReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, err := workSvc.Submit(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// ApproveWorkReceipt records the executive's approval.
func ApproveWorkReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil && err.Error() != "EOF" {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := workSvc.Approve(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// RejectWorkReceipt records the executive's rejection.
func RejectWorkReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.DecisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "a rejection reason is required")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := workSvc.Reject(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// DownloadWorkReceipt streams the rendered PDF export.
func DownloadWorkReceipt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	detail, err := workSvc.Get(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// The approving executive's name comes from the history timeline.
	var executive string
	for i := len(detail.History) - 1; i >= 0; i-- {
		if detail.History[i].Action == models.ActionApproved {
			executive = detail.History[i].ActorName
			break
		}
	}

	pdf, rerr := pdfRenderer.WorkReceipt(detail, executive)
	if rerr != nil {
		respondError(c, services.Unavailable("failed to render document", rerr))
		return
	}

	filename := fmt.Sprintf("work-receipt-%s.pdf", detail.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
