package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/service/backup"
)

const maxBackupBytes = 64 << 20

// DownloadBackup returns the signed-in user's backup as a JSON attachment.
func (h *Handler) DownloadBackup(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.svc.Backup.Download(c.Request.Context(), current(c).User.ID, &buf)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(filename))
	c.Data(http.StatusOK, backup.ContentType, buf.Bytes())
}

// BackupBundle returns the backup wrapped with its filename, for clients that
// hand it to their own share sheet.
func (h *Handler) BackupBundle(c *gin.Context) {
	b, err := h.svc.Backup.Bundle(c.Request.Context(), current(c).User.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":    b.Filename,
		"contentType": b.ContentType,
		"data":        b.Data,
	})
}

// ShareBackup sends the backup to a WhatsApp number.
func (h *Handler) ShareBackup(c *gin.Context) {
	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	b, err := h.svc.Backup.Share(c.Request.Context(), h.svc.Messaging, current(c).User.ID, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"filename": b.Filename, "bytes": len(b.Data)})
}

// ImportBackup restores a backup document sent as the "file" form field or as
// the raw request body. No sign-in is needed so an account can be recovered.
func (h *Handler) ImportBackup(c *gin.Context) {
	var src io.Reader = c.Request.Body
	if c.ContentType() == "multipart/form-data" {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			h.badRequest(c, err)
			return
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(io.LimitReader(src, maxBackupBytes))
	if err != nil {
		h.badRequest(c, err)
		return
	}

	summary, err := h.svc.Backup.Import(c.Request.Context(), data)
	if err != nil {
		if summary.Total() > 0 {
			h.logger.Warn("backup partially imported", zap.Int("rows", summary.Total()))
		}
		h.fail(c, err)
		return
	}
	h.svc.Session.Invalidate()
	c.JSON(http.StatusOK, summary)
}
