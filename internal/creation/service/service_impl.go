package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	"github.com/inkwell-hq/inkwell/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  creationdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  creationdomain.Repository
	genID *snowflake.Node
}

func New(p Params) creationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("creation.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Insert(ctx context.Context, req creationdomain.InsertRequest) (*creationdomain.Response, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, creationdomain.ErrInvalidUser
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, creationdomain.ErrInvalidPrompt
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, creationdomain.ErrInvalidContent
	}

	if !creationdomain.ValidType(req.Type) {
		return nil, creationdomain.ErrInvalidType
	}

	now := time.Now().UTC()
	c := &creationdomain.Creation{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Prompt:    prompt,
		Content:   content,
		Type:      req.Type,
		Publish:   req.Publish,
		Likes:     datatypes.JSONSlice[string]{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}

	return toResponse(c), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*creationdomain.Response, error) {
	creationID, err := creationdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, creationdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, creationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, creationdomain.ErrNotFound
	}

	return toResponse(item), nil
}

func (s *Service) ListByUser(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, creationdomain.ErrInvalidUser
	}

	filter, err := buildFilter(req.Pagination)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByUser(ctx, s.db, userID, filter)
	if err != nil {
		return nil, err
	}

	return buildPage(items, filter.Limit-1)
}

func (s *Service) ListPublished(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	filter, err := buildFilter(req.Pagination)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListPublished(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	return buildPage(items, filter.Limit-1)
}

func (s *Service) ToggleLike(ctx context.Context, req creationdomain.ToggleLikeRequest) (*creationdomain.ToggleLikeResponse, error) {
	creationID, err := creationdomain.ParseID(strings.TrimSpace(req.CreationID))
	if err != nil {
		return nil, creationdomain.ErrInvalidID
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, creationdomain.ErrInvalidUser
	}

	item, err := s.repo.FindByID(ctx, s.db, creationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, creationdomain.ErrNotFound
	}

	liked := false
	updated := make([]string, 0, len(item.Likes)+1)
	for _, uid := range item.Likes {
		if uid == userID {
			continue
		}
		updated = append(updated, uid)
	}
	if len(updated) == len(item.Likes) {
		updated = append(updated, userID)
		liked = true
	}

	// Read-modify-write: two concurrent toggles by the same user can both
	// observe the old set and apply the same transition twice. Accepted; the
	// UPDATE itself replaces the whole set atomically.
	if err := s.repo.UpdateLikes(ctx, s.db, creationID, datatypes.NewJSONSlice(updated)); err != nil {
		return nil, err
	}

	s.log.Debug("like toggled",
		zap.String("creation_id", creationID.String()),
		zap.Bool("liked", liked),
		zap.Int("like_count", len(updated)),
	)

	return &creationdomain.ToggleLikeResponse{
		Liked:     liked,
		LikeCount: len(updated),
	}, nil
}

func (s *Service) SetPublish(ctx context.Context, req creationdomain.SetPublishRequest) (*creationdomain.Response, error) {
	creationID, err := creationdomain.ParseID(strings.TrimSpace(req.CreationID))
	if err != nil {
		return nil, creationdomain.ErrInvalidID
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, creationdomain.ErrInvalidUser
	}

	item, err := s.repo.FindByID(ctx, s.db, creationID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, creationdomain.ErrNotFound
	}
	if item.UserID != userID {
		return nil, creationdomain.ErrForbidden
	}

	if item.Publish != req.Publish {
		if err := s.repo.UpdatePublish(ctx, s.db, creationID, req.Publish); err != nil {
			return nil, err
		}
		item.Publish = req.Publish
	}

	return toResponse(item), nil
}

func buildFilter(page pagination.Pagination) (creationdomain.ListFilter, error) {
	size := page.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	// one extra row to detect a next page
	filter := creationdomain.ListFilter{Limit: size + 1}

	token := strings.TrimSpace(page.PageToken)
	if token == "" {
		return filter, nil
	}

	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return creationdomain.ListFilter{}, creationdomain.ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return creationdomain.ListFilter{}, creationdomain.ErrInvalidCursor
	}

	id, err := creationdomain.ParseID(cursor.ID)
	if err != nil {
		return creationdomain.ListFilter{}, creationdomain.ErrInvalidCursor
	}

	filter.BeforeCreatedAt = &createdAt
	filter.BeforeID = &id
	return filter, nil
}

func buildPage(items []creationdomain.Creation, size int) (*creationdomain.ListResponse, error) {
	hasMore := len(items) > size
	if hasMore {
		items = items[:size]
	}

	resp := &creationdomain.ListResponse{
		Items:    make([]creationdomain.Response, 0, len(items)),
		PageInfo: pagination.PageInfo{HasMore: hasMore},
	}
	for i := range items {
		resp.Items = append(resp.Items, *toResponse(&items[i]))
	}

	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		resp.PageInfo.NextPageToken = token
	}

	return resp, nil
}

func toResponse(c *creationdomain.Creation) *creationdomain.Response {
	likes := make([]string, len(c.Likes))
	copy(likes, c.Likes)

	return &creationdomain.Response{
		ID:        c.ID.String(),
		UserID:    c.UserID,
		Prompt:    c.Prompt,
		Content:   c.Content,
		Type:      c.Type,
		Publish:   c.Publish,
		Likes:     likes,
		LikeCount: len(likes),
		CreatedAt: c.CreatedAt,
	}
}
