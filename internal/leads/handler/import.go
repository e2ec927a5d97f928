package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/importer"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
)

// ImportHandler serves the admin CSV upload.
type ImportHandler struct {
	svc     *importer.Service
	maxSize int64
}

func NewImportHandler(svc *importer.Service, maxSize int64) *ImportHandler {
	return &ImportHandler{svc: svc, maxSize: maxSize}
}

func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
}

// Upload takes a multipart form with "file", "preview" and "skipDuplicates"
// (default true).
func (h *ImportHandler) Upload(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	// Leave room for the multipart envelope around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.HandleError(c, h.tooLarge())
			return
		}
		httpkit.HandleError(c, apperr.Validation("No file provided"))
		return
	}
	if header.Size > h.maxSize {
		httpkit.HandleError(c, h.tooLarge())
		return
	}

	f, err := header.Open()
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, "failed to read upload", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxSize+1))
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, "failed to read upload", err))
		return
	}

	if c.PostForm("preview") == "true" {
		res, err := h.svc.Preview(c.Request.Context(), data)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, res)
		return
	}

	res, err := h.svc.Import(c.Request.Context(), importer.Upload{
		ActorID:        id.UserID(),
		FileName:       header.Filename,
		Data:           data,
		SkipDuplicates: c.PostForm("skipDuplicates") != "false",
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *ImportHandler) tooLarge() error {
	return apperr.Validation(fmt.Sprintf("File size exceeds %dMB limit", h.maxSize>>20))
}
