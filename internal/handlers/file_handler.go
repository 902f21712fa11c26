package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/storage"
)

// maxUploadBytes caps attachment uploads at 10MB.
const maxUploadBytes = 10 << 20

// allowedUploadTypes lists the document content types accepted as
// attachments.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/csv":           true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// FileHandler handles attachment uploads and listing
type FileHandler struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

// NewFileHandler creates a new file handler
func NewFileHandler(db *gorm.DB, blobs storage.BlobStore) *FileHandler {
	return &FileHandler{db: db, blobs: blobs}
}

// Upload stores a document for an ambassador or developer
func (h *FileHandler) Upload(c *gin.Context) {
	ownerType := models.AttachmentOwner(c.Param("owner_type"))
	if ownerType != models.AttachmentOwnerAmbassador && ownerType != models.AttachmentOwnerDeveloper {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_type must be ambassador or developer"})
		return
	}
	ownerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 10MB limit"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	path := fmt.Sprintf("%s/%s/%d%s", ownerType, ownerID, time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	url, err := h.blobs.Upload(c.Request.Context(), "attachments", path, contentType, data)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed"})
		return
	}

	attachment := models.Attachment{
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		URL:         url,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// List returns the attachments of an ambassador or developer
func (h *FileHandler) List(c *gin.Context) {
	ownerType := models.AttachmentOwner(c.Param("owner_type"))
	ownerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var attachments []models.Attachment
	err := h.db.WithContext(c.Request.Context()).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at desc").Find(&attachments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}
