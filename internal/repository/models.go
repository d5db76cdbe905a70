package repository

import "time"

// TelegramUpdate is the audit record for one webhook delivery. The unique
// index on UpdateID is the authoritative idempotency guard: a racing
// duplicate insert fails at the storage layer, not in application code.
type TelegramUpdate struct {
	ID          uint  `gorm:"primaryKey"`
	UpdateID    int64 `gorm:"uniqueIndex;not null"`
	ChatID      *int64
	Username    *string `gorm:"size:255"`
	RawData     *string `gorm:"type:text"`
	MessageText *string `gorm:"type:text"`
	CreatedAt   time.Time
}
