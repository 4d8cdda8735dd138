package models

import "time"

// QueueMetrics — агрегированные метрики очереди. Не хранятся, считаются по
// текущему состоянию.
type QueueMetrics struct {
	WaitingUsers int `json:"waiting_users"`
	DraftUsers   int `json:"draft_users"`
	ActiveUsers  int `json:"active_users"`
	TotalSlots   int `json:"total_slots"`
}

// QueueStatusInfo — ответ на запрос статуса участника. Позиция считается
// заново при каждом запросе среди записей в статусе waiting (1-based,
// без пропусков); для draft/connected позиция равна 0.
type QueueStatusInfo struct {
	UserID string      `json:"user_id"`
	Status QueueStatus `json:"status"`

	Position int `json:"position"`

	// EstimatedTime — оценка времени ожидания в секундах до предложения
	// слота. Оценка приблизительная, гарантируется только монотонность
	// по позиции.
	EstimatedTime int64 `json:"estimated_time"`

	DraftExpiresAt   *time.Time `json:"draft_expires_at,omitempty"`
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`
}

// QueueEventType — тип события жизненного цикла очереди.
type QueueEventType string

const (
	EventUserJoined     QueueEventType = "user_joined"
	EventUserLeft       QueueEventType = "user_left"
	EventDrafted        QueueEventType = "drafted"
	EventDraftExpired   QueueEventType = "draft_expired"
	EventSessionExpired QueueEventType = "session_expired"
	EventHeartbeatLost  QueueEventType = "heartbeat_lost"
	EventMetrics        QueueEventType = "metrics"
)

// QueueEvent — событие жизненного цикла. Ядро очереди возвращает события из
// мутирующих операций, обработчики и планировщик рассылают их подписчикам
// через WebSocket.
type QueueEvent struct {
	Type   QueueEventType `json:"type"`
	UserID string         `json:"user_id,omitempty"`
}

// TimerType — вид таймера, действующего для записи (эндпоинт timers).
type TimerType string

const (
	// TimerPoll — для waiting: рекомендованная задержка до следующего
	// опроса статуса.
	TimerPoll TimerType = "poll"
	// TimerDraft — для draft: остаток окна подтверждения.
	TimerDraft TimerType = "draft"
	// TimerSession — для connected: остаток сессии.
	TimerSession TimerType = "session"
)

// QueueTimerInfo — ответ эндпоинта timers: активный таймер записи и канал
// WebSocket, по которому придут события этой записи.
type QueueTimerInfo struct {
	TimerType TimerType `json:"timer_type"`
	TTL       int64     `json:"ttl"` // секунды
	Channel   string    `json:"channel,omitempty"`
}
