package api

import (
	"net/http"

	"voiceguard/audio-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const recentFilesLimit = 5

// AudioRecent returns the caller's most recent uploads, newest first.
func (a *API) AudioRecent(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var entries []model.AudioFile

	err := a.DB.
		Where("user_id = ?", userID).
		Order("upload_date desc").
		Limit(recentFilesLimit).
		Find(&entries).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up recent files", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, entries)
}
