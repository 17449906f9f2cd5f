package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"procurement-receipt-api/middleware"
	"procurement-receipt-api/services"
)

// CombinedDocuments merges both document kinds into one list, newest
// first.
func CombinedDocuments(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	rows, pagination, err := docSvc.Combined(actor, listQueryFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "pagination": pagination})
}

// DocumentHistory returns the global audit feed, optionally narrowed by
// type and document id.
func DocumentHistory(c *gin.Context) {
	var kind *services.DocumentKind
	if raw := c.Query("type"); raw != "" {
		k, err := services.ParseDocumentKind(raw)
		if err != nil {
			badRequest(c, "unknown document type")
			return
		}
		kind = &k
	}

	var documentID *int
	if raw := c.Query("document_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequest(c, "invalid document id")
			return
		}
		documentID = &id
	}

	entries, serr := historySvc.Feed(kind, documentID)
	if serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// DocumentStats returns the role-scoped status counts.
func DocumentStats(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	stats, err := docSvc.Stats(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
