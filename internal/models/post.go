package models

import (
	"time"

	"gorm.io/datatypes"
)

// Like records one user's like on a post.
type Like struct {
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is embedded in its post and carries a snapshot of the author's name and avatar.
type Comment struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) EntryID() string { return c.ID }

// Post is authored by a user. Likes and Comments are kept newest-first.
type Post struct {
	ID        uint                         `gorm:"primaryKey" json:"id"`
	UserID    uint                         `gorm:"not null;index" json:"user_id"`
	Text      string                       `gorm:"type:text;not null" json:"text"`
	Name      string                       `json:"name"`
	Avatar    string                       `json:"avatar"`
	Likes     datatypes.JSONSlice[Like]    `json:"likes"`
	Comments  datatypes.JSONSlice[Comment] `json:"comments"`
	CreatedAt time.Time                    `gorm:"index" json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// Normalize replaces nil lists so they serialize as empty arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = datatypes.JSONSlice[Like]{}
	}
	if p.Comments == nil {
		p.Comments = datatypes.JSONSlice[Comment]{}
	}
}
