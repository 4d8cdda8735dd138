package handlers

import (
	"net/http"
	"time"

	"llm_queue/internal/models"
	"llm_queue/internal/response"
	"llm_queue/internal/storage"
	"llm_queue/internal/ws"

	"github.com/gin-gonic/gin"
)

// ProfileQueueItem represents the account's current queue standing
type ProfileQueueItem struct {
	QueueUserID      string             `json:"queue_user_id,omitempty"`
	Status           models.QueueStatus `json:"status"`
	Position         int                `json:"position,omitempty"`
	EstimatedTime    int64              `json:"estimated_time,omitempty"`
	DraftExpiresAt   *time.Time         `json:"draft_expires_at,omitempty"`
	SessionExpiresAt *time.Time         `json:"session_expires_at,omitempty"`
	Channel          string             `json:"channel,omitempty"`
}

// GetProfileQueueHandler godoc
// @Summary		Положение в очереди
// @Description	Возвращает текущее положение учётной записи в очереди. Если живой записи нет, статус disconnected.
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	ProfileQueueItem	"Текущее положение в очереди"
// @Failure		401	{object}	response.ErrorResponse	"Требуется авторизация (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Failure		404	{object}	response.ErrorResponse	"Пользователь не найден (USER_NOT_FOUND)"
// @Router			/profile/queue [get]
func GetProfileQueueHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:   "USER_NOT_FOUND",
			Detail: "Пользователь не найден",
		})
		return
	}

	// Учётная запись, не привязанная к очереди, считается отключённой.
	if user.QueueUserID == "" {
		c.JSON(http.StatusOK, ProfileQueueItem{Status: models.StatusDisconnected})
		return
	}

	info, err := Queue.Status(user.QueueUserID)
	if err != nil {
		// Запись выбыла или вышла: живого участия нет.
		c.JSON(http.StatusOK, ProfileQueueItem{
			QueueUserID: user.QueueUserID,
			Status:      models.StatusDisconnected,
		})
		return
	}

	c.JSON(http.StatusOK, ProfileQueueItem{
		QueueUserID:      user.QueueUserID,
		Status:           info.Status,
		Position:         info.Position,
		EstimatedTime:    info.EstimatedTime,
		DraftExpiresAt:   info.DraftExpiresAt,
		SessionExpiresAt: info.SessionExpiresAt,
		Channel:          ws.UserChannel(user.QueueUserID),
	})
}
