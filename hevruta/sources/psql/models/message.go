package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ThreadID  string    `json:"thread_id" gorm:"type:varchar(255);not null;index"`
	Thread    Thread    `json:"-" gorm:"foreignKey:ThreadID;references:ID;constraint:OnDelete:CASCADE"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null"` // "user" or "assistant"
	Content   string    `json:"content" gorm:"type:text;not null"`
	RunID     *string   `json:"run_id,omitempty" gorm:"type:varchar(255);index"`
	UserEmail string    `json:"user_email" gorm:"type:varchar(255);not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
