// Package domain defines the generation workflow boundary: one operation per
// product surface, each resolving to a persisted creation.
package domain

import (
	"context"
	"errors"

	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
)

type Service interface {
	GenerateArticle(ctx context.Context, req ArticleRequest) (*creationdomain.Response, error)
	GenerateBlogTitle(ctx context.Context, req BlogTitleRequest) (*creationdomain.Response, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*creationdomain.Response, error)
	RemoveBackground(ctx context.Context, req RemoveBackgroundRequest) (*creationdomain.Response, error)
	RemoveObject(ctx context.Context, req RemoveObjectRequest) (*creationdomain.Response, error)
	ReviewResume(ctx context.Context, req ReviewResumeRequest) (*creationdomain.Response, error)
}

type ArticleRequest struct {
	User   *identitydomain.User
	Prompt string
	Length int
}

type BlogTitleRequest struct {
	User   *identitydomain.User
	Prompt string
}

type ImageRequest struct {
	User    *identitydomain.User
	Prompt  string
	Publish bool
}

type RemoveBackgroundRequest struct {
	User      *identitydomain.User
	ImagePath string
}

type RemoveObjectRequest struct {
	User      *identitydomain.User
	ImagePath string
	Object    string
}

type ReviewResumeRequest struct {
	User     *identitydomain.User
	FilePath string
	FileName string
	FileSize int64
}

var (
	ErrEmptyPrompt      = errors.New("empty_prompt")
	ErrMissingFile      = errors.New("missing_file")
	ErrFileTooLarge     = errors.New("file_too_large")
	ErrNotPDF           = errors.New("not_pdf")
	ErrQuotaExceeded    = errors.New("quota_exceeded")
	ErrBusy             = errors.New("generation_in_progress")
	ErrPremiumRequired  = errors.New("premium_required")
	ErrGenerationFailed = errors.New("generation_failed")
	ErrStorageFailed    = errors.New("storage_failed")
)
