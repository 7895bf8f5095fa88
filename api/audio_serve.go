package api

import (
	"errors"
	"net/http"

	"voiceguard/audio-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AudioServe streams a stored blob back with its recorded content type.
func (a *API) AudioServe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	var rec model.AudioFile

	err := a.DB.Where("id = ?", fileID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if file exists", zap.String("id", fileID), zap.Error(err))
		return
	}

	blob, err := a.Store.Get(c.Request.Context(), rec.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open blob", zap.String("id", fileID), zap.Error(err))
		return
	}
	defer blob.Close()

	c.DataFromReader(http.StatusOK, rec.Size, rec.ContentType, blob, nil)
}
