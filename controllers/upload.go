package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"procurement-receipt-api/config"
	"procurement-receipt-api/middleware"
	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

const (
	maxUploadFiles    = 5
	maxUploadSize     = 10 << 20 // 10MB per file
	maxSignatureSize  = 2 << 20  // 2MB
)

var allowedUploadExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var allowedSignatureExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

// UploadAttachments stores up to five evidence files against a draft
// document. Files are written to disk first; the ledger rows are
// registered in one transaction and stray blobs are removed on failure.
func UploadAttachments(c *gin.Context) {
	kind, kerr := services.ParseDocumentKind(c.Param("kind"))
	if kerr != nil {
		badRequest(c, "unknown document kind")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "multipart form with a files field is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		badRequest(c, "no files provided")
		return
	}
	if len(files) > maxUploadFiles {
		badRequest(c, fmt.Sprintf("at most %d files per upload", maxUploadFiles))
		return
	}

	caption := c.PostForm("caption")
	var uploads []services.Upload
	var written []string
	cleanup := func() {
		for _, name := range written {
			os.Remove(filepath.Join(uploadDir, name))
		}
	}

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedUploadExt[ext] {
			cleanup()
			badRequest(c, fmt.Sprintf("file type %s is not allowed", ext))
			return
		}
		if fh.Size > maxUploadSize {
			cleanup()
			badRequest(c, fmt.Sprintf("%s exceeds the 10MB limit", fh.Filename))
			return
		}

		stored := uuid.New().String() + ext
		if err := c.SaveUploadedFile(fh, filepath.Join(uploadDir, stored)); err != nil {
			cleanup()
			respondError(c, services.Unavailable("failed to store file", err))
			return
		}
		written = append(written, stored)

		uploads = append(uploads, services.Upload{
			OriginalName: filepath.Base(fh.Filename),
			StoredName:   stored,
			MimeType:     fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Caption:      caption,
		})
	}

	actor := middleware.ActorFromContext(c)
	rows, serr := attachSvc.Add(kind, id, actor, uploads)
	if serr != nil {
		cleanup()
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": rows})
}

// ListAttachments returns the attachments of one document.
func ListAttachments(c *gin.Context) {
	kind, kerr := services.ParseDocumentKind(c.Param("kind"))
	if kerr != nil {
		badRequest(c, "unknown document kind")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	rows, err := attachSvc.List(kind, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// DeleteAttachment removes one attachment and its blob.
func DeleteAttachment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		badRequest(c, "invalid attachment id")
		return
	}

	actor := middleware.ActorFromContext(c)
	if serr := attachSvc.Remove(actor, id); serr != nil {
		respondError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted"})
}

// DownloadAttachment serves the stored blob under its original name.
func DownloadAttachment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		badRequest(c, "invalid attachment id")
		return
	}

	row, serr := attachSvc.Get(id)
	if serr != nil {
		respondError(c, serr)
		return
	}

	path := attachSvc.FilePath(row)
	if _, statErr := os.Stat(path); statErr != nil {
		respondError(c, services.NotFound("attachment file is missing"))
		return
	}
	c.FileAttachment(path, row.OriginalName)
}

// UploadSignature stores the inspector's signature image, replacing any
// previous one. The image is rendered into approved-document exports.
func UploadSignature(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor.Role != models.RoleInspector {
		respondError(c, services.Forbidden("only inspectors may upload a signature"))
		return
	}

	fh, err := c.FormFile("signature")
	if err != nil {
		badRequest(c, "a signature file is required")
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedSignatureExt[ext] {
		badRequest(c, "signature must be a jpeg or png image")
		return
	}
	if fh.Size > maxSignatureSize {
		badRequest(c, "signature exceeds the 2MB limit")
		return
	}

	stored := fmt.Sprintf("signature-%d-%s%s", actor.ID, uuid.New().String(), ext)
	if err := c.SaveUploadedFile(fh, filepath.Join(signatureDir, stored)); err != nil {
		respondError(c, services.Unavailable("failed to store signature", err))
		return
	}

	var previous *string
	var inspector models.Inspector
	if err := config.DB.Take(&inspector, actor.ID).Error; err == nil {
		previous = inspector.SignaturePath
	}

	if err := config.DB.Model(&models.Inspector{}).
		Where("id = ?", actor.ID).
		Update("signature_path", stored).Error; err != nil {
		os.Remove(filepath.Join(signatureDir, stored))
		respondError(c, services.Unavailable("failed to save signature", err))
		return
	}

	if previous != nil && *previous != "" && *previous != stored {
		if rmErr := os.Remove(filepath.Join(signatureDir, *previous)); rmErr != nil && !os.IsNotExist(rmErr) {
			config.Log.WithError(rmErr).Warn("previous signature file not removed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"signature_path": stored})
}
