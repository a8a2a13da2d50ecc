package handler

import (
	"context"
	"net/http"

	"findautopart/internal/apierror"
	"findautopart/internal/dto"
	"findautopart/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AlmacenBlobs reserves upload slots for item images (infra.BlobStore).
type AlmacenBlobs interface {
	StoreBlob(ctx context.Context, name, contentType string) (*infra.UploadTarget, string, error)
}

type ArchivosHandler struct{ store AlmacenBlobs }

// NewArchivosHandler accepts a nil store; Subir then answers 503.
func NewArchivosHandler(store AlmacenBlobs) *ArchivosHandler {
	return &ArchivosHandler{store: store}
}

// Subir godoc
// @Summary      Reservar subida de imagen
// @Description  Devuelve una URL prefirmada; el cliente sube los bytes directo a S3 y usa key en imagen_key.
// @Tags         archivos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubirArchivoRequest true "Nombre y tipo"
// @Success      201  {object} dto.SubirArchivoResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/archivos [post]
func (h *ArchivosHandler) Subir(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Almacenamiento no disponible"))
		return
	}
	var req dto.SubirArchivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	target, readURL, err := h.store.StoreBlob(c.Request.Context(), req.Nombre, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("nombre", req.Nombre).Msg("archivos: presign failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Almacenamiento no disponible"))
		return
	}
	c.JSON(http.StatusCreated, dto.SubirArchivoResponse{
		Key:       target.Key,
		UploadURL: target.URL,
		Method:    target.Method,
		Headers:   target.Headers,
		ReadURL:   readURL,
	})
}
