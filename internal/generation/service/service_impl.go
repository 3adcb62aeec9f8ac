package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/inkwell-hq/inkwell/internal/config"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"github.com/inkwell-hq/inkwell/internal/observability/metrics"
	"github.com/inkwell-hq/inkwell/internal/pdftext"
	"github.com/inkwell-hq/inkwell/internal/providers/ai"
	"github.com/inkwell-hq/inkwell/internal/providers/media"
	"github.com/inkwell-hq/inkwell/internal/quota"
	"github.com/inkwell-hq/inkwell/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultArticleTokens   = 800
	blogTitleTokens        = 100
	resumeReviewTokens     = 1000
	removeBackgroundPrompt = "Remove background from image"
	resumeReviewPrompt     = "Review the uploaded resume"

	resumeReviewTemplate = "Review the following resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume Content:\n\n%s"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Policy    *config.PolicyConfigHolder
	Gate      *quota.Gate
	Identity  identitydomain.Service
	Text      ai.TextGenerator
	Image     ai.ImageGenerator
	Media     media.Store
	Creations creationdomain.Service
	Limiter   *ratelimit.GenerationLimiter `optional:"true"`
	Metrics   *metrics.Metrics             `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	policy    *config.PolicyConfigHolder
	gate      *quota.Gate
	identity  identitydomain.Service
	text      ai.TextGenerator
	image     ai.ImageGenerator
	media     media.Store
	creations creationdomain.Service
	limiter   *ratelimit.GenerationLimiter
	metrics   *metrics.Metrics
}

func New(p Params) generationdomain.Service {
	return &Service{
		log:       p.Log.Named("generation.service"),
		policy:    p.Policy,
		gate:      p.Gate,
		identity:  p.Identity,
		text:      p.Text,
		image:     p.Image,
		media:     p.Media,
		creations: p.Creations,
		limiter:   p.Limiter,
		metrics:   p.Metrics,
	}
}

func (s *Service) GenerateArticle(ctx context.Context, req generationdomain.ArticleRequest) (*creationdomain.Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, generationdomain.ErrEmptyPrompt
	}

	if err := s.checkQuota(req.User, creationdomain.TypeArticle); err != nil {
		return nil, err
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	maxTokens := int32(req.Length)
	if maxTokens <= 0 {
		maxTokens = defaultArticleTokens
	}

	content, err := s.text.Generate(ctx, prompt, maxTokens)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeArticle, err)
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  prompt,
		Content: content,
		Type:    creationdomain.TypeArticle,
	}, true)
}

func (s *Service) GenerateBlogTitle(ctx context.Context, req generationdomain.BlogTitleRequest) (*creationdomain.Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, generationdomain.ErrEmptyPrompt
	}

	if err := s.checkQuota(req.User, creationdomain.TypeBlogTitle); err != nil {
		return nil, err
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	content, err := s.text.Generate(ctx, prompt, blogTitleTokens)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeBlogTitle, err)
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  prompt,
		Content: content,
		Type:    creationdomain.TypeBlogTitle,
	}, true)
}

func (s *Service) GenerateImage(ctx context.Context, req generationdomain.ImageRequest) (*creationdomain.Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, generationdomain.ErrEmptyPrompt
	}

	if err := s.checkQuota(req.User, creationdomain.TypeImage); err != nil {
		return nil, err
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	sanitized := Sanitize(prompt, s.policy.Get().SanitizerRules)
	if sanitized != prompt {
		s.log.Info("prompt sanitized", zap.String("user_id", req.User.ID))
	}

	data, err := s.image.TextToImage(ctx, sanitized)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeImage, err)
	}

	url, err := s.storeImage(ctx, data)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  prompt,
		Content: url,
		Type:    creationdomain.TypeImage,
		Publish: req.Publish,
	}, true)
}

func (s *Service) RemoveBackground(ctx context.Context, req generationdomain.RemoveBackgroundRequest) (*creationdomain.Response, error) {
	if err := ensurePremium(req.User); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ImagePath) == "" {
		return nil, generationdomain.ErrMissingFile
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := s.image.RemoveBackground(ctx, req.ImagePath)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeImage, err)
	}

	url, err := s.storeImage(ctx, data)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  removeBackgroundPrompt,
		Content: url,
		Type:    creationdomain.TypeImage,
	}, false)
}

func (s *Service) RemoveObject(ctx context.Context, req generationdomain.RemoveObjectRequest) (*creationdomain.Response, error) {
	if err := ensurePremium(req.User); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ImagePath) == "" {
		return nil, generationdomain.ErrMissingFile
	}
	object := strings.TrimSpace(req.Object)
	if object == "" {
		return nil, generationdomain.ErrEmptyPrompt
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := s.image.RemoveObject(ctx, req.ImagePath, object)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeImage, err)
	}

	url, err := s.storeImage(ctx, data)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  fmt.Sprintf("Removed %s from image", object),
		Content: url,
		Type:    creationdomain.TypeImage,
	}, false)
}

func (s *Service) ReviewResume(ctx context.Context, req generationdomain.ReviewResumeRequest) (*creationdomain.Response, error) {
	if err := ensurePremium(req.User); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return nil, generationdomain.ErrMissingFile
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".pdf") {
		return nil, generationdomain.ErrNotPDF
	}
	if req.FileSize > s.policy.Get().MaxUploadBytes {
		return nil, generationdomain.ErrFileTooLarge
	}

	release, err := s.lockUser(ctx, req.User.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	text, err := pdftext.Extract(req.FilePath)
	if err != nil {
		s.log.Warn("resume text extraction failed", zap.Error(err))
		return nil, generationdomain.ErrNotPDF
	}

	content, err := s.text.Generate(ctx, fmt.Sprintf(resumeReviewTemplate, text), resumeReviewTokens)
	if err != nil {
		return nil, s.providerFailure(creationdomain.TypeResumeReview, err)
	}

	return s.commit(ctx, req.User, creationdomain.InsertRequest{
		UserID:  req.User.ID,
		Prompt:  resumeReviewPrompt,
		Content: content,
		Type:    creationdomain.TypeResumeReview,
	}, false)
}

func (s *Service) checkQuota(user *identitydomain.User, operation string) error {
	decision := s.gate.Check(user.Plan, user.FreeUsage, operation)
	if decision.Allowed {
		return nil
	}

	s.metrics.RecordQuotaDenied(operation)
	s.log.Info("quota denied",
		zap.String("user_id", user.ID),
		zap.String("operation", operation),
		zap.Int("limit", decision.Limit),
	)
	return generationdomain.ErrQuotaExceeded
}

// lockUser serializes one user's generations so the provider-side usage
// counter is incremented in order. When Redis is down the lock degrades to a
// no-op rather than blocking generations.
func (s *Service) lockUser(ctx context.Context, userID string) (func(), error) {
	token, ok, err := s.limiter.TryLockUser(ctx, userID)
	if err != nil {
		s.log.Warn("generation lock unavailable", zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, generationdomain.ErrBusy
	}
	return func() {
		if err := s.limiter.ReleaseUser(context.WithoutCancel(ctx), userID, token); err != nil {
			s.log.Warn("generation lock release failed", zap.Error(err))
		}
	}, nil
}

// commit persists the creation and, for metered free-plan requests, commits
// the usage counter. The increment happens last: an insert failure must not
// burn quota. A failed increment is logged and swallowed, which can
// under-count usage in the user's favor.
func (s *Service) commit(ctx context.Context, user *identitydomain.User, req creationdomain.InsertRequest, metered bool) (*creationdomain.Response, error) {
	resp, err := s.creations.Insert(ctx, req)
	if err != nil {
		s.metrics.RecordGenerationFailure(req.Type, "persist")
		s.log.Error("creation insert failed",
			zap.String("user_id", user.ID),
			zap.String("type", req.Type),
			zap.Error(err),
		)
		return nil, err
	}

	if metered && user.Plan == identitydomain.PlanFree {
		if err := s.identity.IncrementFreeUsage(ctx, user.ID); err != nil {
			s.log.Warn("free usage increment failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	s.metrics.RecordGeneration(req.Type)
	return resp, nil
}

func (s *Service) storeImage(ctx context.Context, data []byte) (string, error) {
	url, err := s.media.Upload(ctx, uuid.NewString()+".png", data, "image/png")
	if err != nil {
		s.metrics.RecordGenerationFailure(creationdomain.TypeImage, "storage")
		s.log.Error("media upload failed", zap.Error(err))
		return "", generationdomain.ErrStorageFailed
	}
	return url, nil
}

func (s *Service) providerFailure(creationType string, err error) error {
	s.metrics.RecordGenerationFailure(creationType, "provider")
	s.log.Error("provider call failed",
		zap.String("type", creationType),
		zap.Error(err),
	)
	return generationdomain.ErrGenerationFailed
}

func ensurePremium(user *identitydomain.User) error {
	if user.Plan != identitydomain.PlanPremium {
		return generationdomain.ErrPremiumRequired
	}
	return nil
}
