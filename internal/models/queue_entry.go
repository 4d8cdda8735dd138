package models

import "time"

// QueueStatus — статус участника очереди доступа.
type QueueStatus string

const (
	// StatusWaiting — участник ждёт свободного слота.
	StatusWaiting QueueStatus = "waiting"
	// StatusDraft — участнику предложен слот, ожидается подтверждение.
	StatusDraft QueueStatus = "draft"
	// StatusConnected — участник занимает слот, сессия ограничена по времени.
	StatusConnected QueueStatus = "connected"
	// StatusDisconnected — терминальное состояние: записи в очереди нет.
	// Отдельной строкой не хранится, кодируется отсутствием записи.
	StatusDisconnected QueueStatus = "disconnected"
)

// QueueEntry — запись участника очереди. Хранится в памяти ядра очереди и
// сериализуется как есть в снапшоты состояния и в админский листинг.
type QueueEntry struct {
	UserID string      `json:"user_id"`
	Status QueueStatus `json:"status"`

	JoinedAt        time.Time `json:"joined_at"`
	LastHeartbeatAt time.Time `json:"last_heartbeat_at"`

	// DraftedAt/DraftExpiresAt заполняются при переходе в draft:
	// не подтвердивший в окно участник выбывает.
	DraftedAt      time.Time `json:"drafted_at,omitempty"`
	DraftExpiresAt time.Time `json:"draft_expires_at,omitempty"`

	// ConnectedAt/SessionExpiresAt заполняются при подтверждении:
	// по достижении дедлайна сессия принудительно завершается.
	ConnectedAt      time.Time `json:"connected_at,omitempty"`
	SessionExpiresAt time.Time `json:"session_expires_at,omitempty"`
}
