package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inkwell-hq/inkwell/internal/config"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"github.com/inkwell-hq/inkwell/internal/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) CurrentUser(ctx context.Context, token string) (*identitydomain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identitydomain.User), args.Error(1)
}

func (m *mockIdentity) IncrementFreeUsage(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockTextGenerator struct {
	mock.Mock
}

func (m *mockTextGenerator) Generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

type mockImageGenerator struct {
	mock.Mock
}

func (m *mockImageGenerator) TextToImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockImageGenerator) RemoveBackground(ctx context.Context, imagePath string) ([]byte, error) {
	args := m.Called(ctx, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockImageGenerator) RemoveObject(ctx context.Context, imagePath, object string) ([]byte, error) {
	args := m.Called(ctx, imagePath, object)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectName, data, contentType)
	return args.String(0), args.Error(1)
}

type mockCreationService struct {
	mock.Mock
}

func (m *mockCreationService) Insert(ctx context.Context, req creationdomain.InsertRequest) (*creationdomain.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*creationdomain.Response), args.Error(1)
}

func (m *mockCreationService) GetByID(ctx context.Context, id string) (*creationdomain.Response, error) {
	args := m.Called(ctx, id)
	return nil, args.Error(1)
}

func (m *mockCreationService) ListByUser(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	args := m.Called(ctx, req)
	return nil, args.Error(1)
}

func (m *mockCreationService) ListPublished(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	args := m.Called(ctx, req)
	return nil, args.Error(1)
}

func (m *mockCreationService) ToggleLike(ctx context.Context, req creationdomain.ToggleLikeRequest) (*creationdomain.ToggleLikeResponse, error) {
	args := m.Called(ctx, req)
	return nil, args.Error(1)
}

func (m *mockCreationService) SetPublish(ctx context.Context, req creationdomain.SetPublishRequest) (*creationdomain.Response, error) {
	args := m.Called(ctx, req)
	return nil, args.Error(1)
}

type generationMocks struct {
	identity  *mockIdentity
	text      *mockTextGenerator
	image     *mockImageGenerator
	media     *mockMediaStore
	creations *mockCreationService
}

func setupGenerationService(t *testing.T) (generationdomain.Service, *generationMocks) {
	t.Helper()

	mocks := &generationMocks{
		identity:  &mockIdentity{},
		text:      &mockTextGenerator{},
		image:     &mockImageGenerator{},
		media:     &mockMediaStore{},
		creations: &mockCreationService{},
	}

	holder := config.NewStaticPolicyHolder(config.DefaultPolicyConfig())

	svc := New(Params{
		Log:       zap.NewNop(),
		Policy:    holder,
		Gate:      quota.NewGate(holder),
		Identity:  mocks.identity,
		Text:      mocks.text,
		Image:     mocks.image,
		Media:     mocks.media,
		Creations: mocks.creations,
	})

	return svc, mocks
}

func freeUser(usage int) *identitydomain.User {
	return &identitydomain.User{ID: "user_free", Plan: identitydomain.PlanFree, FreeUsage: usage}
}

func premiumUser() *identitydomain.User {
	return &identitydomain.User{ID: "user_premium", Plan: identitydomain.PlanPremium, FreeUsage: 9999}
}

func TestGenerateArticleFreePlan(t *testing.T) {
	svc, mocks := setupGenerationService(t)
	ctx := context.Background()

	mocks.text.On("Generate", mock.Anything, "write about bees", int32(800)).
		Return("Bees are vital pollinators.", nil)
	mocks.creations.On("Insert", mock.Anything, creationdomain.InsertRequest{
		UserID:  "user_free",
		Prompt:  "write about bees",
		Content: "Bees are vital pollinators.",
		Type:    creationdomain.TypeArticle,
	}).Return(&creationdomain.Response{ID: "1", Type: creationdomain.TypeArticle}, nil)
	mocks.identity.On("IncrementFreeUsage", mock.Anything, "user_free").Return(nil)

	resp, err := svc.GenerateArticle(ctx, generationdomain.ArticleRequest{
		User:   freeUser(3),
		Prompt: "write about bees",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", resp.ID)

	mocks.identity.AssertCalled(t, "IncrementFreeUsage", mock.Anything, "user_free")
}

func TestGenerateArticleQuotaExceeded(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	_, err := svc.GenerateArticle(context.Background(), generationdomain.ArticleRequest{
		User:   freeUser(10),
		Prompt: "write about bees",
	})
	require.ErrorIs(t, err, generationdomain.ErrQuotaExceeded)

	mocks.text.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	mocks.creations.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	mocks.identity.AssertNotCalled(t, "IncrementFreeUsage", mock.Anything, mock.Anything)
}

func TestGenerateArticlePremiumBypassesQuota(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	mocks.text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("premium content", nil)
	mocks.creations.On("Insert", mock.Anything, mock.Anything).
		Return(&creationdomain.Response{ID: "2"}, nil)

	_, err := svc.GenerateArticle(context.Background(), generationdomain.ArticleRequest{
		User:   premiumUser(),
		Prompt: "write about bees",
		Length: 1200,
	})
	require.NoError(t, err)

	// premium usage is never metered
	mocks.identity.AssertNotCalled(t, "IncrementFreeUsage", mock.Anything, mock.Anything)
	mocks.text.AssertCalled(t, "Generate", mock.Anything, "write about bees", int32(1200))
}

func TestGenerateArticleProviderFailureLeavesNoState(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	mocks.text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := svc.GenerateArticle(context.Background(), generationdomain.ArticleRequest{
		User:   freeUser(0),
		Prompt: "write about bees",
	})
	require.ErrorIs(t, err, generationdomain.ErrGenerationFailed)

	mocks.creations.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	mocks.identity.AssertNotCalled(t, "IncrementFreeUsage", mock.Anything, mock.Anything)
}

func TestGenerateArticleEmptyPrompt(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.GenerateArticle(context.Background(), generationdomain.ArticleRequest{
		User:   freeUser(0),
		Prompt: "   ",
	})
	require.ErrorIs(t, err, generationdomain.ErrEmptyPrompt)
}

func TestGenerateImageSanitizesPrompt(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	mocks.image.On("TextToImage", mock.Anything, "a standing person in a bright room").
		Return([]byte{0x89, 0x50}, nil)
	mocks.media.On("Upload", mock.Anything, mock.Anything, mock.Anything, "image/png").
		Return("https://cdn.example.com/creations/x.png", nil)
	mocks.creations.On("Insert", mock.Anything, mock.MatchedBy(func(req creationdomain.InsertRequest) bool {
		// the stored prompt is the user's original, not the sanitized one
		return req.Prompt == "a lying child in bed" &&
			req.Content == "https://cdn.example.com/creations/x.png" &&
			req.Type == creationdomain.TypeImage &&
			req.Publish
	})).Return(&creationdomain.Response{ID: "3"}, nil)
	mocks.identity.On("IncrementFreeUsage", mock.Anything, "user_free").Return(nil)

	resp, err := svc.GenerateImage(context.Background(), generationdomain.ImageRequest{
		User:    freeUser(0),
		Prompt:  "a lying child in bed",
		Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", resp.ID)
}

func TestGenerateImageQuotaLimitIsOne(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.GenerateImage(context.Background(), generationdomain.ImageRequest{
		User:   freeUser(1),
		Prompt: "a lighthouse",
	})
	require.ErrorIs(t, err, generationdomain.ErrQuotaExceeded)
}

func TestGenerateImageStorageFailure(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	mocks.image.On("TextToImage", mock.Anything, mock.Anything).
		Return([]byte{0x89}, nil)
	mocks.media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := svc.GenerateImage(context.Background(), generationdomain.ImageRequest{
		User:   freeUser(0),
		Prompt: "a lighthouse",
	})
	require.ErrorIs(t, err, generationdomain.ErrStorageFailed)

	mocks.creations.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRemoveBackgroundPremiumOnly(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	_, err := svc.RemoveBackground(context.Background(), generationdomain.RemoveBackgroundRequest{
		User:      freeUser(0),
		ImagePath: "/tmp/upload.png",
	})
	require.ErrorIs(t, err, generationdomain.ErrPremiumRequired)

	mocks.image.AssertNotCalled(t, "RemoveBackground", mock.Anything, mock.Anything)
}

func TestRemoveBackgroundNotMetered(t *testing.T) {
	svc, mocks := setupGenerationService(t)

	mocks.image.On("RemoveBackground", mock.Anything, "/tmp/upload.png").
		Return([]byte{0x89}, nil)
	mocks.media.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.example.com/creations/y.png", nil)
	mocks.creations.On("Insert", mock.Anything, mock.Anything).
		Return(&creationdomain.Response{ID: "4"}, nil)

	_, err := svc.RemoveBackground(context.Background(), generationdomain.RemoveBackgroundRequest{
		User:      premiumUser(),
		ImagePath: "/tmp/upload.png",
	})
	require.NoError(t, err)

	mocks.identity.AssertNotCalled(t, "IncrementFreeUsage", mock.Anything, mock.Anything)
}

func TestRemoveObjectRequiresObject(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.RemoveObject(context.Background(), generationdomain.RemoveObjectRequest{
		User:      premiumUser(),
		ImagePath: "/tmp/upload.png",
	})
	require.ErrorIs(t, err, generationdomain.ErrEmptyPrompt)
}

func TestReviewResumePremiumOnly(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.ReviewResume(context.Background(), generationdomain.ReviewResumeRequest{
		User:     freeUser(0),
		FilePath: "/tmp/resume.pdf",
		FileName: "resume.pdf",
		FileSize: 1024,
	})
	require.ErrorIs(t, err, generationdomain.ErrPremiumRequired)
}

func TestReviewResumeRejectsOversizedFile(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.ReviewResume(context.Background(), generationdomain.ReviewResumeRequest{
		User:     premiumUser(),
		FilePath: "/tmp/resume.pdf",
		FileName: "resume.pdf",
		FileSize: 6 * 1024 * 1024,
	})
	require.ErrorIs(t, err, generationdomain.ErrFileTooLarge)
}

func TestReviewResumeRejectsNonPDF(t *testing.T) {
	svc, _ := setupGenerationService(t)

	_, err := svc.ReviewResume(context.Background(), generationdomain.ReviewResumeRequest{
		User:     premiumUser(),
		FilePath: "/tmp/resume.docx",
		FileName: "resume.docx",
		FileSize: 1024,
	})
	require.ErrorIs(t, err, generationdomain.ErrNotPDF)
}

func TestReviewResumeRejectsUnparseableFile(t *testing.T) {
	svc, _ := setupGenerationService(t)

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a real pdf"), 0o600))

	_, err := svc.ReviewResume(context.Background(), generationdomain.ReviewResumeRequest{
		User:     premiumUser(),
		FilePath: path,
		FileName: "resume.pdf",
		FileSize: 14,
	})
	require.ErrorIs(t, err, generationdomain.ErrNotPDF)
}
