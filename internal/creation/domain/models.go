// Package domain contains persistence models for generated creations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Creation stores the result of one generation request. Rows are append-only
// except for the likes set and the publish flag; prompt and content are
// write-once.
type Creation struct {
	ID        snowflake.ID                `json:"id" gorm:"primaryKey"`
	UserID    string                      `json:"user_id" gorm:"column:user_id;type:text;not null;index:idx_creations_user_created,priority:1"`
	Prompt    string                      `json:"prompt" gorm:"type:text;not null"`
	Content   string                      `json:"content" gorm:"type:text;not null"`
	Type      string                      `json:"type" gorm:"type:text;not null"`
	Publish   bool                        `json:"publish" gorm:"not null;default:false"`
	Likes     datatypes.JSONSlice[string] `json:"likes" gorm:"type:jsonb"`
	CreatedAt time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_creations_user_created,priority:2"`
	UpdatedAt time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Creation) TableName() string { return "creations" }

const (
	TypeArticle      = "article"
	TypeBlogTitle    = "blog-title"
	TypeImage        = "image"
	TypeResumeReview = "resume-review"
)

func ValidType(t string) bool {
	switch t {
	case TypeArticle, TypeBlogTitle, TypeImage, TypeResumeReview:
		return true
	default:
		return false
	}
}
