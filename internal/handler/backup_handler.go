package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dojokai/dojo-api/internal/service"
	"github.com/dojokai/dojo-api/pkg/response"
)

// BackupHandler exposes the data-backup endpoints.
type BackupHandler struct {
	backups *service.BackupService
}

// NewBackupHandler constructs BackupHandler.
func NewBackupHandler(backups *service.BackupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// Run godoc
// @Summary Start a backup job
// @Description Queues a CSV export of every domain table.
// @Tags Backups
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /backups [post]
func (h *BackupHandler) Run(c *gin.Context) {
	job, err := h.backups.Run(c.Request.Context(), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Get backup job status
// @Tags Backups
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /backups/{id} [get]
func (h *BackupHandler) Status(c *gin.Context) {
	job, err := h.backups.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download streams a finished snapshot file. The token in the URL is signed
// and expiring, so the route needs no JWT.
func (h *BackupHandler) Download(c *gin.Context) {
	download, err := h.backups.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	}
	c.DataFromReader(http.StatusOK, info.Size(), "text/csv", download.File, headers)
}
