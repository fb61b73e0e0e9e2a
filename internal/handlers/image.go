package handlers

import (
	"net/http"

	"github.com/hannatrush/PetSoft/internal/middleware"
	"github.com/hannatrush/PetSoft/internal/services"

	"github.com/rs/zerolog/log"
)

// 10 MiB cap on uploaded pet images.
const maxImageSize = 10 << 20

// ImageHandler handles pet image uploads
type ImageHandler struct {
	imageService *services.ImageService
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// ImageResponse carries the stored image URL
type ImageResponse struct {
	ImageURL string `json:"image_url"`
}

// UploadImage handles POST /api/v1/pets/images as a multipart form with an
// "image" file field, returning the URL to put on the pet record.
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := middleware.GetSession(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, "image too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.imageService.Upload(ctx, session.UserID,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to upload image")
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("user_id", session.UserID).
		Str("image_url", url).
		Msg("Pet image uploaded")

	respondJSON(w, http.StatusCreated, ImageResponse{ImageURL: url})
}
