package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"procurement-receipt-api/config"
	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

// listQueryFrom reads the shared list parameters. The status filter
// accepts a comma-separated list.
func listQueryFrom(c *gin.Context) services.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var statuses []string
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	return services.ListQuery{
		Page:     page,
		Limit:    limit,
		Statuses: statuses,
		Search:   strings.TrimSpace(c.Query("search")),
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		badRequest(c, "invalid document id")
		return 0, false
	}
	return id, true
}

// ListGoodsReceipts returns the paginated, filtered list.
func ListGoodsReceipts(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	rows, pagination, err := goodsSvc.List(actor, listQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": pagination})
}

// GetGoodsReceipt returns one document with timeline and attachments.
// The path segment may be a numeric id or a document number.
func GetGoodsReceipt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	detail, err := goodsSvc.Get(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

// CreateGoodsReceipt creates a draft.
func CreateGoodsReceipt(c *gin.Context) {
	var in services.GoodsReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := goodsSvc.Create(actor, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

// UpdateGoodsReceipt rewrites a draft.
func UpdateGoodsReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.GoodsReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := goodsSvc.Update(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// DeleteGoodsReceipt removes a draft and its history and attachments.
func DeleteGoodsReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(c)
	if err := goodsSvc.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// SubmitGoodsReceipt moves a draft to submitted.
func SubmitGoodsReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, err := goodsSvc.Submit(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// ReviewGoodsReceipt records the inspector's check.
func ReviewGoodsReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in services.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	actor := middleware.ActorFromContext(c)
	doc, serr := goodsSvc.Review(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// ApproveGoodsReceipt finalizes a reviewed document.
func ApproveGoodsReceipt(c *gin.Context) {
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
	doc, serr := goodsSvc.Approve(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// RejectGoodsReceipt returns a reviewed document with a reason.
func RejectGoodsReceipt(c *gin.Context) {
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
	doc, serr := goodsSvc.Reject(actor, id, in)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// DownloadGoodsReceipt streams the rendered PDF export.
func DownloadGoodsReceipt(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	detail, err := goodsSvc.Get(actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// The reviewer's signature image, when one is on file.
	var inspector *models.Inspector
	if name := detail.LastInspector; name != "" {
		var row models.Inspector
		if dbErr := config.DB.Where("name = ?", name).Take(&row).Error; dbErr == nil {
			inspector = &row
		}
	}

	pdf, rerr := pdfRenderer.GoodsReceipt(detail, inspector)
	if rerr != nil {
		respondError(c, services.Unavailable("failed to render document", rerr))
		return
	}

	filename := fmt.Sprintf("goods-receipt-%s.pdf", detail.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
