package models

import "gorm.io/gorm"

// User — учётная запись, создаваемая после допуска из очереди
// (регистрация доступна только участнику в статусе connected).
type User struct {
	gorm.Model
	Name            string `gorm:"not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	ProfileImageURL string // аватар, может быть пустым
	Role            string `gorm:"default:user"`

	// QueueUserID — идентификатор записи очереди, из которой была создана
	// учётная запись. Нужен для принудительного выхода по истечении сессии.
	QueueUserID string `gorm:"index"`
}
