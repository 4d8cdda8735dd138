package response

import "time"

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// AckResponse представляет подтверждение идемпотентной операции очереди
type AckResponse struct {
	Success bool `json:"success" example:"true"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: QUEUE_FULL
	Code string `json:"code"`

	// Человекочитаемое описание ошибки
	// example: очередь ожидания заполнена
	Detail string `json:"detail"`

	// Дополнительные детали об ошибке (опционально)
	// example: поле user_id не должно превышать 128 символов
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// JoinResponse представляет ответ на вход в очередь
type JoinResponse struct {
	// Идентификатор участника (выдаётся сервером, если не был передан)
	UserID string `json:"user_id" example:"c2b8f9e0-5c1a-4f6e-9b2d-7a3e8d1c4b5a"`

	// Позиция в очереди ожидания, начиная с 1
	Position int `json:"position" example:"42"`
}

// ConfirmResponse представляет ответ на подтверждение слота
type ConfirmResponse struct {
	// Статус записи после подтверждения
	Status string `json:"status" example:"connected"`

	// Длительность выданной сессии в секундах
	SessionDuration int64 `json:"session_duration" example:"1200"`

	// Абсолютный момент окончания сессии
	SessionExpiresAt time.Time `json:"session_expires_at"`

	// JWT токен сессии для доступа к защищённым ресурсам
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}
