package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
	"github.com/credilocker/credilocker-api/pkg/storage"
)

// FilesHandler exchanges stored public file URLs for signed preview links and
// serves the files behind them.
type FilesHandler struct {
	resolver *storage.PreviewResolver
	signer   *storage.SignedURLSigner
	store    *storage.LocalStorage
}

// NewFilesHandler constructs FilesHandler.
func NewFilesHandler(resolver *storage.PreviewResolver, signer *storage.SignedURLSigner, store *storage.LocalStorage) *FilesHandler {
	return &FilesHandler{resolver: resolver, signer: signer, store: store}
}

// Preview godoc
// @Summary Sign a stored file URL
// @Description Exchanges a stored public object URL for a short-lived signed preview link
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body handler.PreviewRequest true "Stored file URL"
// @Success 200 {object} response.Envelope
// @Router /files/preview [post]
func (h *FilesHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "url is required"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": h.resolver.Resolve(req.URL)}, nil)
}

// Signed godoc
// @Summary Serve a signed file
// @Description Streams the stored file referenced by a signed preview token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed preview token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /files/signed/{token} [get]
func (h *FilesHandler) Signed(c *gin.Context) {
	resource, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid file token"))
		return
	}
	if resource != "preview" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid file token"))
		return
	}
	c.File(h.store.Path(relPath))
}

// PreviewRequest carries the stored public URL to sign.
type PreviewRequest struct {
	URL string `json:"url"`
}
