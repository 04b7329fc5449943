package domain

import "time"

type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Gamertag  string    `gorm:"size:64;index" json:"gamertag"`
	Avatar    string    `gorm:"size:1024" json:"avatar"`
	Bio       string    `gorm:"size:2048" json:"bio"`
	Region    string    `gorm:"size:64" json:"region"`
	GameType  string    `gorm:"size:64" json:"game_type"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// ProfileSummary is the minimal projection attached to report rows.
type ProfileSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Gamertag  string    `json:"gamertag"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Gamertag:  p.Gamertag,
		Avatar:    p.Avatar,
		CreatedAt: p.CreatedAt,
	}
}
