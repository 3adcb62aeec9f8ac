package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListFilter narrows a listing to one page. Before is exclusive: rows strictly
// older than (BeforeCreatedAt, BeforeID) in the newest-first order.
type ListFilter struct {
	Limit           int
	BeforeCreatedAt *time.Time
	BeforeID        *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, creation *Creation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Creation, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string, filter ListFilter) ([]Creation, error)
	ListPublished(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Creation, error)
	UpdateLikes(ctx context.Context, db *gorm.DB, id snowflake.ID, likes datatypes.JSONSlice[string]) error
	UpdatePublish(ctx context.Context, db *gorm.DB, id snowflake.ID, publish bool) error
}
