package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is keyed by email. Legacy rows (imported from the old directory)
// still carry a random uuid as ID with the email only in the Email
// column; the DAO read path handles both and migrates legacy rows onto
// the email key when it sees them.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(255);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:user"`
	Name      *string   `json:"name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
