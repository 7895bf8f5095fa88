package api

import (
	"net/http"

	"voiceguard/audio-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMe returns the caller's profile and how many files they have
// uploaded. This is used when initially loading the dashboard
func (a *API) AuthMe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	err := a.DB.Where("id = ?", userID).First(&user).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user profile", zap.String("userID", userID), zap.Error(err))
		return
	}

	var uploads int64

	err = a.DB.Model(model.AudioFile{}).Where("user_id = ?", userID).Count(&uploads).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count uploads", zap.String("userID", userID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"uploads": uploads,
	})
}
