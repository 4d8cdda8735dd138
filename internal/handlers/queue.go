package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"llm_queue/internal/models"
	"llm_queue/internal/queue"
	"llm_queue/internal/response"
	"llm_queue/internal/storage"
	"llm_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Queue — ядро очереди, единое для всего процесса. Создаётся в
// InitQueueStore до регистрации маршрутов.
var Queue *queue.Store

// QueueTokenSecret подписывает JWT сессии, выдаваемый при подтверждении слота.
var QueueTokenSecret = []byte(os.Getenv("QUEUE_TOKEN_SECRET"))

var ctx = context.Background()

const (
	metricsCacheKey = "queue:metrics"
	metricsCacheTTL = 5 * time.Second
)

// InitQueueStore создаёт ядро очереди из переменных окружения.
// Длительности задаются в секундах.
func InitQueueStore() {
	Queue = queue.New(queue.Options{
		MaxConnected:    envInt("MAX_ACTIVE_USERS", 0),
		MaxWaiting:      envInt("MAX_WAITING_USERS", 500),
		DraftDuration:   envSeconds("DRAFT_DURATION"),
		SessionDuration: envSeconds("SESSION_DURATION"),
		HeartbeatTTL:    envSeconds("HEARTBEAT_TTL"),
		PersistPrefix:   os.Getenv("PERSIST_PREFIX"),
		PersistStates:   envInt("PERSIST_STATES", 0),
	})
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Неверное значение %s=%q, используется %d", name, v, def)
		return def
	}
	return n
}

func envSeconds(name string) time.Duration {
	return time.Duration(envInt(name, 0)) * time.Second
}

type JoinQueueRequest struct {
	// Идентификатор участника. Если не передан, сервер выдаёт UUID.
	UserID string `json:"user_id" binding:"omitempty,max=128"`
}

type QueueUserRequest struct {
	UserID string `json:"user_id" binding:"required,max=128"`
}

// queueError переводит ошибку ядра очереди в HTTP-ответ.
func queueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrAlreadyQueued):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:   "ALREADY_QUEUED",
			Detail: "Пользователь уже состоит в очереди",
		})
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:   "NOT_FOUND",
			Detail: "Запись в очереди не найдена",
		})
	case errors.Is(err, queue.ErrInvalidState):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:   "INVALID_STATE",
			Detail: "Операция недопустима в текущем статусе записи",
		})
	case errors.Is(err, queue.ErrCapacityExceeded):
		c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
			Code:   "QUEUE_FULL",
			Detail: "Очередь ожидания заполнена, попробуйте позже",
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:   "INTERNAL_ERROR",
			Detail: "Внутренняя ошибка сервера",
		})
	}
}

// BroadcastQueueEvents рассылает события такта обслуживания: каждое уходит в
// общий канал и, если событие адресное, в персональный канал участника.
func BroadcastQueueEvents(events []models.QueueEvent) {
	for _, ev := range events {
		data := map[string]interface{}{}
		if ev.UserID != "" {
			data["user_id"] = ev.UserID
		}
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: string(ev.Type),
			Channel:   ws.QueueChannel,
			Data:      data,
		})
		if ev.UserID != "" {
			ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
				EventType: string(ev.Type),
				Channel:   ws.UserChannel(ev.UserID),
				Data:      data,
			})
		}
	}
}

// SweepQueue выполняет один такт обслуживания очереди и рассылает события.
func SweepQueue() []models.QueueEvent {
	events := Queue.Idle()
	BroadcastQueueEvents(events)
	return events
}

// BroadcastMetrics публикует сводку очереди в общий канал.
func BroadcastMetrics() {
	m := Queue.Metrics()
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: string(models.EventMetrics),
		Channel:   ws.QueueChannel,
		Data: map[string]interface{}{
			"waiting_users": m.WaitingUsers,
			"draft_users":   m.DraftUsers,
			"active_users":  m.ActiveUsers,
			"total_slots":   m.TotalSlots,
		},
	})
}

// JoinQueueHandler обрабатывает запрос на вступление в очередь
// @Summary		Вступление в очередь
// @Description	Добавляет участника в хвост очереди ожидания и уведомляет подписчиков. Если user_id не передан, сервер выдаёт UUID.
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			user	body		JoinQueueRequest	false	"Идентификатор участника"
// @Success		200	{object}	response.JoinResponse	"Успешное вступление с позицией в очереди"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR) или повторный вход (ALREADY_QUEUED)"
// @Failure		429	{object}	response.ErrorResponse	"Очередь заполнена (QUEUE_FULL)"
// @Router			/queue/join [post]
func JoinQueueHandler(c *gin.Context) {
	var req JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Detail:  "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	position, err := Queue.Join(userID)
	if err != nil {
		queueError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: string(models.EventUserJoined),
		Channel:   ws.QueueChannel,
		Data: map[string]interface{}{
			"user_id":  userID,
			"position": position,
		},
	})

	// Вступление сразу даёт такт обслуживания: свободные слоты раздаются,
	// не дожидаясь планировщика.
	SweepQueue()

	c.JSON(http.StatusOK, response.JoinResponse{
		UserID:   userID,
		Position: position,
	})
}

// LeaveQueueHandler обрабатывает запрос на выход из очереди
// @Summary		Выход из очереди
// @Description	Удаляет запись участника в любом статусе и уведомляет подписчиков
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			user	body		QueueUserRequest	true	"Идентификатор участника"
// @Success		200	{object}	response.AckResponse	"Успешный выход из очереди"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Router			/queue/leave [post]
func LeaveQueueHandler(c *gin.Context) {
	var req QueueUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Detail:  "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if err := Queue.Leave(req.UserID); err != nil {
		queueError(c, err)
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: string(models.EventUserLeft),
		Channel:   ws.QueueChannel,
		Data: map[string]interface{}{
			"user_id": req.UserID,
		},
	})

	c.JSON(http.StatusOK, response.AckResponse{Success: true})
}

// ConfirmQueueHandler обрабатывает подтверждение предложенного слота
// @Summary		Подтверждение слота
// @Description	Переводит запись из draft в connected и выдаёт JWT сессии с абсолютным дедлайном
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			user	body		QueueUserRequest	true	"Идентификатор участника"
// @Success		200	{object}	response.ConfirmResponse	"Сессия выдана"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR) или запись не в draft (INVALID_STATE)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (TOKEN_GENERATION_ERROR)"
// @Router			/queue/confirm [post]
func ConfirmQueueHandler(c *gin.Context) {
	var req QueueUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Detail:  "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	duration, expiresAt, err := Queue.Confirm(req.UserID)
	if err != nil {
		queueError(c, err)
		return
	}

	token, err := generateSessionToken(req.UserID, expiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:   "TOKEN_GENERATION_ERROR",
			Detail: "Ошибка при генерации токена сессии",
		})
		return
	}

	c.JSON(http.StatusOK, response.ConfirmResponse{
		Status:           string(models.StatusConnected),
		SessionDuration:  int64(duration.Seconds()),
		SessionExpiresAt: expiresAt,
		Token:            token,
	})
}

// generateSessionToken подписывает JWT сессии, истекающий вместе с ней.
func generateSessionToken(userID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(QueueTokenSecret)
}

// HeartbeatQueueHandler обрабатывает сигнал живости участника
// @Summary		Heartbeat участника
// @Description	Обновляет отметку живости: ожидающие без heartbeat выбывают по порогу
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			user	body		QueueUserRequest	true	"Идентификатор участника"
// @Success		200	{object}	response.AckResponse	"Отметка обновлена"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Router			/queue/heartbeat [post]
func HeartbeatQueueHandler(c *gin.Context) {
	var req QueueUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Detail:  "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if err := Queue.Heartbeat(req.UserID); err != nil {
		queueError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.AckResponse{Success: true})
}

// GetQueueStatusHandler обрабатывает запрос статуса участника
// @Summary		Статус участника
// @Description	Возвращает статус записи, позицию среди ожидающих и оценку времени до слота
// @Tags			queue
// @Produce		json
// @Param			user_id	path		string	true	"Идентификатор участника"
// @Success		200	{object}	models.QueueStatusInfo	"Текущий статус"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Router			/queue/status/{user_id} [get]
func GetQueueStatusHandler(c *gin.Context) {
	info, err := Queue.Status(c.Param("user_id"))
	if err != nil {
		queueError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetQueueMetricsHandler обрабатывает запрос метрик очереди
// @Summary		Метрики очереди
// @Description	Возвращает сводку по числу ожидающих, активных и общему числу слотов
// @Tags			queue
// @Produce		json
// @Success		200	{object}	models.QueueMetrics	"Сводка очереди"
// @Router			/queue/metrics [get]
func GetQueueMetricsHandler(c *gin.Context) {
	// Сводка горячая, поэтому ненадолго кэшируется в Redis. Без Redis
	// (или при промахе) считаем напрямую.
	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, metricsCacheKey).Result(); err == nil && cached != "" {
			var m models.QueueMetrics
			if err := json.Unmarshal([]byte(cached), &m); err == nil {
				c.JSON(http.StatusOK, m)
				return
			}
		}
	}

	m := Queue.Metrics()

	if storage.RedisClient != nil {
		if data, err := json.Marshal(m); err == nil {
			storage.RedisClient.Set(ctx, metricsCacheKey, data, metricsCacheTTL)
		}
	}

	c.JSON(http.StatusOK, m)
}

// GetQueueTimersHandler обрабатывает запрос активного таймера участника
// @Summary		Таймер участника
// @Description	Возвращает активный таймер записи: задержку опроса для ожидающих, остаток окна подтверждения для draft, остаток сессии для connected
// @Tags			queue
// @Produce		json
// @Param			user_id	path		string	true	"Идентификатор участника"
// @Success		200	{object}	models.QueueTimerInfo	"Активный таймер и персональный канал"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (NOT_FOUND)"
// @Router			/queue/timers/{user_id} [get]
func GetQueueTimersHandler(c *gin.Context) {
	userID := c.Param("user_id")
	info, err := Queue.TimerInfo(userID)
	if err != nil {
		queueError(c, err)
		return
	}
	info.Channel = ws.UserChannel(userID)
	c.JSON(http.StatusOK, info)
}

// IdleQueueHandler принудительно запускает такт обслуживания
// @Summary		Такт обслуживания очереди
// @Description	Выбывание просроченных записей и продвижение ожидающих вне расписания планировщика
// @Tags			queue
// @Produce		json
// @Success		200	{object}	response.AckResponse	"Такт выполнен"
// @Router			/queue/idle [post]
func IdleQueueHandler(c *gin.Context) {
	SweepQueue()
	c.JSON(http.StatusOK, response.AckResponse{Success: true})
}

// GetQueueEntriesHandler возвращает все живые записи очереди
// @Summary		Список записей очереди
// @Description	Все живые записи в порядке waiting, draft, connected — для панели оператора
// @Tags			queue
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		models.QueueEntry	"Записи очереди"
// @Failure		401	{object}	response.ErrorResponse	"Требуется авторизация (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Router			/api/queue/entries [get]
func GetQueueEntriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, Queue.Entries())
}
