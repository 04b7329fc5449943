package domain

import "time"

// UserSession is one device session row from the consumer app. A user
// with several devices has several rows, so activity counts must
// deduplicate by UserID.
type UserSession struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	DeviceType   string    `gorm:"size:32" json:"device_type"`
	AppVersion   string    `gorm:"size:32" json:"app_version"`
	AuthProvider string    `gorm:"size:32" json:"auth_provider"`
	LastActiveAt time.Time `gorm:"index" json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UserSession) TableName() string { return "user_sessions" }
