package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"craftmarket/internal/logging"
	"craftmarket/internal/middleware"
	"craftmarket/internal/storage"
)

const uploadTimeout = 30 * time.Second

// UploadImage stores a multipart "file" image and returns its public URL.
func UploadImage(objects storage.ObjectStore, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /upload/image"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxImageSize+1<<20)
		header, err := c.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				respondWithError(c, http.StatusBadRequest, route, "No file uploaded")
				return
			}
			respondWithError(c, http.StatusBadRequest, route, "invalid multipart body")
			return
		}

		file, err := header.Open()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "failed to read upload")
			return
		}
		defer file.Close()

		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			respondWithError(c, http.StatusBadRequest, route, "failed to read upload")
			return
		}
		ext, contentType, err := storage.ValidateImage(header.Filename, header.Size, head[:n])
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to read upload")
			return
		}

		userID := middleware.UserID(c)
		key := storage.ImageKey(userID, now(), ext)
		ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancel()
		url, err := objects.Put(ctx, key, contentType, file, header.Size)
		if err != nil {
			logging.FromContext(ctx).Error("image upload failed",
				slog.Int64(logging.KeyUserID, userID), logging.Err(err))
			respondWithError(c, http.StatusInternalServerError, route, "failed to upload file")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "filename": key})
	}
}
