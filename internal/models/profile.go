package models

import (
	"time"

	"gorm.io/datatypes"
)

// SocialLinks holds the recognized social network URLs of a profile.
type SocialLinks struct {
	YouTube   string `json:"youtube,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Experience is a job entry embedded in a profile.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

func (e Experience) EntryID() string { return e.ID }

// Education is a school entry embedded in a profile.
type Education struct {
	ID           string     `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

func (e Education) EntryID() string { return e.ID }

// Profile is the professional record owned by exactly one user.
// Experience and Education are kept newest-first.
type Profile struct {
	ID             uint                            `gorm:"primaryKey" json:"id"`
	UserID         uint                            `gorm:"uniqueIndex;not null" json:"user_id"`
	User           User                            `gorm:"foreignKey:UserID" json:"user"`
	Company        string                          `json:"company,omitempty"`
	Website        string                          `json:"website,omitempty"`
	Location       string                          `json:"location,omitempty"`
	Bio            string                          `gorm:"type:text" json:"bio,omitempty"`
	Status         string                          `gorm:"not null" json:"status"`
	GithubUsername string                          `json:"github_username,omitempty"`
	Skills         datatypes.JSONSlice[string]     `json:"skills"`
	Social         datatypes.JSONType[SocialLinks] `json:"social"`
	Experience     datatypes.JSONSlice[Experience] `json:"experience"`
	Education      datatypes.JSONSlice[Education]  `json:"education"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
}

// Normalize replaces nil lists so they serialize as empty arrays.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = datatypes.JSONSlice[string]{}
	}
	if p.Experience == nil {
		p.Experience = datatypes.JSONSlice[Experience]{}
	}
	if p.Education == nil {
		p.Education = datatypes.JSONSlice[Education]{}
	}
}
