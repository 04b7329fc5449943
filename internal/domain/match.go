package domain

import "time"

type Match struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	User1ID   string    `gorm:"size:36;not null;index" json:"user1_id"`
	User2ID   string    `gorm:"size:36;not null;index" json:"user2_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Match) TableName() string { return "matches" }
