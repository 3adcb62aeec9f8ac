package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/inkwell-hq/inkwell/pkg/db/pagination"
)

type Service interface {
	Insert(ctx context.Context, req InsertRequest) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	ListByUser(ctx context.Context, req ListRequest) (*ListResponse, error)
	ListPublished(ctx context.Context, req ListRequest) (*ListResponse, error)
	ToggleLike(ctx context.Context, req ToggleLikeRequest) (*ToggleLikeResponse, error)
	SetPublish(ctx context.Context, req SetPublishRequest) (*Response, error)
}

type InsertRequest struct {
	UserID  string
	Prompt  string
	Content string
	Type    string
	Publish bool
}

type ListRequest struct {
	UserID     string
	Pagination pagination.Pagination
}

type ListResponse struct {
	Items    []Response          `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type ToggleLikeRequest struct {
	CreationID string
	UserID     string
}

// ToggleLikeResponse reports the caller's resulting like state. Clients may
// have applied the flip optimistically and reconcile against this.
type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type SetPublishRequest struct {
	CreationID string
	UserID     string
	Publish    bool
}

type Response struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Publish   bool      `json:"publish"`
	Likes     []string  `json:"likes"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidPrompt  = errors.New("invalid_prompt")
	ErrInvalidContent = errors.New("invalid_content")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidCursor  = errors.New("invalid_cursor")
	ErrForbidden      = errors.New("forbidden")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
