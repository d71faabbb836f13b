package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RatingLike    = "like"
	RatingDislike = "dislike"
)

// Feedback is upserted by RunID: one row per assistant turn, updated in
// place when the user resubmits.
type Feedback struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RunID         string    `json:"run_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	ThreadID      string    `json:"thread_id" gorm:"type:varchar(255);index"`
	Rating        string    `json:"rating" gorm:"type:varchar(20);not null"`
	Comment       string    `json:"comment" gorm:"type:text"`
	ReviewerEmail string    `json:"reviewer_email" gorm:"type:varchar(255);not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
