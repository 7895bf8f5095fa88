package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"voiceguard/audio-api/model"
	"voiceguard/audio-api/service"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"voiceguard/audio-api/validators"
)

// AudioUpload runs an upload through validated -> classified -> stored.
// The metadata record is written before the blob; if the blob write then
// fails the record is left behind on purpose. There is no transaction
// spanning both stores.
func (a *API) AudioUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	files := form.File["audio"]
	if len(files) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, f, err := validators.AudioValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))

			// That's to set the error into a general one for the users
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	fileID, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate file ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	verdict := service.Classify()

	rec := model.AudioFile{
		ID:          fileID,
		UserID:      userID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Confidence:  verdict.Confidence,
		Result:      verdict.Result,
		UploadDate:  time.Now(),
	}

	if err := a.DB.Create(&rec).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save file record to db", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.Store.Put(c.Request.Context(), rec.ID, f, fh.Size, rec.ContentType)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "File upload failed",
			"requestID": requestID,
		})

		// The metadata row stays behind, there is no rollback
		zap.L().Error("Failed to store audio blob",
			zap.String("fileID", rec.ID),
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "File uploaded successfully",
		"id":          rec.ID,
		"filename":    rec.Filename,
		"contentType": rec.ContentType,
		"confidence":  rec.Confidence,
		"result":      rec.Result,
	})
}
