package domain

import "time"

// AdminUser is the row proving a verified identity holds a staff role.
// At most one row exists per identity; absence means not staff.
type AdminUser struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `gorm:"size:36" json:"created_by"`
}

func (AdminUser) TableName() string { return "admin_users" }
