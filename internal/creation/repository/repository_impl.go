package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() creationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *creationdomain.Creation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO creations (id, user_id, prompt, content, type, publish, likes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.Prompt,
		c.Content,
		c.Type,
		c.Publish,
		c.Likes,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*creationdomain.Creation, error) {
	var creation creationdomain.Creation
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, prompt, content, type, publish, likes, created_at, updated_at
		 FROM creations WHERE id = ?`,
		id,
	).Scan(&creation).Error
	if err != nil {
		return nil, err
	}
	if creation.ID == 0 {
		return nil, nil
	}
	return &creation, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string, filter creationdomain.ListFilter) ([]creationdomain.Creation, error) {
	query := db.WithContext(ctx).
		Table("creations").
		Where("user_id = ?", userID)

	return scanPage(applyCursor(query, filter), filter)
}

func (r *repo) ListPublished(ctx context.Context, db *gorm.DB, filter creationdomain.ListFilter) ([]creationdomain.Creation, error) {
	query := db.WithContext(ctx).
		Table("creations").
		Where("publish = ?", true)

	return scanPage(applyCursor(query, filter), filter)
}

func (r *repo) UpdateLikes(ctx context.Context, db *gorm.DB, id snowflake.ID, likes datatypes.JSONSlice[string]) error {
	return db.WithContext(ctx).Exec(
		`UPDATE creations SET likes = ?, updated_at = ? WHERE id = ?`,
		likes,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) UpdatePublish(ctx context.Context, db *gorm.DB, id snowflake.ID, publish bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE creations SET publish = ?, updated_at = ? WHERE id = ?`,
		publish,
		time.Now().UTC(),
		id,
	).Error
}

// applyCursor keeps the newest-first order stable across pages; the id tie
// break matters when two rows share a created_at.
func applyCursor(query *gorm.DB, filter creationdomain.ListFilter) *gorm.DB {
	if filter.BeforeCreatedAt != nil && filter.BeforeID != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			*filter.BeforeCreatedAt,
			*filter.BeforeCreatedAt,
			*filter.BeforeID,
		)
	}
	return query.Order("created_at DESC, id DESC")
}

func scanPage(query *gorm.DB, filter creationdomain.ListFilter) ([]creationdomain.Creation, error) {
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var creations []creationdomain.Creation
	if err := query.Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}
