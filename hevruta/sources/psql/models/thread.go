package models

import "time"

// DefaultThreadTitle is the placeholder title a thread carries until the
// first user message renames it.
const DefaultThreadTitle = "שיחה חדשה"

// Thread id is the id issued by the external assistant service, so the
// same identifier works against both stores.
type Thread struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	UserEmail string    `json:"user_email" gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
