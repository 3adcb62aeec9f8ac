package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-hq/inkwell/internal/config"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"go.uber.org/zap"
)

type fakeIdentityService struct {
	user *identitydomain.User
	err  error
}

func (f *fakeIdentityService) CurrentUser(ctx context.Context, token string) (*identitydomain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeIdentityService) IncrementFreeUsage(ctx context.Context, userID string) error {
	return nil
}

type fakeCreationService struct {
	getResp    *creationdomain.Response
	listResp   *creationdomain.ListResponse
	toggleResp *creationdomain.ToggleLikeResponse
	err        error

	lastToggle creationdomain.ToggleLikeRequest
}

func (f *fakeCreationService) Insert(ctx context.Context, req creationdomain.InsertRequest) (*creationdomain.Response, error) {
	return nil, f.err
}

func (f *fakeCreationService) GetByID(ctx context.Context, id string) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getResp, nil
}

func (f *fakeCreationService) ListByUser(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listResp, nil
}

func (f *fakeCreationService) ListPublished(ctx context.Context, req creationdomain.ListRequest) (*creationdomain.ListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listResp, nil
}

func (f *fakeCreationService) ToggleLike(ctx context.Context, req creationdomain.ToggleLikeRequest) (*creationdomain.ToggleLikeResponse, error) {
	f.lastToggle = req
	if f.err != nil {
		return nil, f.err
	}
	return f.toggleResp, nil
}

func (f *fakeCreationService) SetPublish(ctx context.Context, req creationdomain.SetPublishRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getResp, nil
}

type fakeGenerationService struct {
	resp *creationdomain.Response
	err  error

	articleCalls int
	lastArticle  generationdomain.ArticleRequest
}

func (f *fakeGenerationService) GenerateArticle(ctx context.Context, req generationdomain.ArticleRequest) (*creationdomain.Response, error) {
	f.articleCalls++
	f.lastArticle = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerationService) GenerateBlogTitle(ctx context.Context, req generationdomain.BlogTitleRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerationService) GenerateImage(ctx context.Context, req generationdomain.ImageRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerationService) RemoveBackground(ctx context.Context, req generationdomain.RemoveBackgroundRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerationService) RemoveObject(ctx context.Context, req generationdomain.RemoveObjectRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerationService) ReviewResume(ctx context.Context, req generationdomain.ReviewResumeRequest) (*creationdomain.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestServer(t *testing.T, identity *fakeIdentityService, creations *fakeCreationService, generations *fakeGenerationService) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        router,
		cfg:           config.Config{UploadDir: t.TempDir()},
		log:           zap.NewNop(),
		identitySvc:   identity,
		creationSvc:   creations,
		generationSvc: generations,
	}
	srv.registerAIRoutes()
	srv.registerCreationRoutes()

	return srv
}

func authedIdentity() *fakeIdentityService {
	return &fakeIdentityService{
		user: &identitydomain.User{ID: "user_1", Plan: identitydomain.PlanFree, FreeUsage: 2},
	}
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-abc")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)
	return resp
}

func TestAuthRequiredMissingToken(t *testing.T) {
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, &fakeGenerationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-article", bytes.NewBufferString(`{"prompt":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredIdentityUnavailable(t *testing.T) {
	identity := &fakeIdentityService{err: identitydomain.ErrUnavailable}
	srv := newTestServer(t, identity, &fakeCreationService{}, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodPost, "/api/ai/generate-article", `{"prompt":"x"}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestGenerateArticleHandler(t *testing.T) {
	generations := &fakeGenerationService{
		resp: &creationdomain.Response{ID: "1", Type: creationdomain.TypeArticle, Content: "text"},
	}
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, generations)

	resp := doJSON(srv, http.MethodPost, "/api/ai/generate-article", `{"prompt":"write about bees","length":1200}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if generations.articleCalls != 1 {
		t.Fatalf("expected 1 article call, got %d", generations.articleCalls)
	}
	if generations.lastArticle.User.ID != "user_1" {
		t.Fatalf("expected user from auth context, got %q", generations.lastArticle.User.ID)
	}
	if generations.lastArticle.Length != 1200 {
		t.Fatalf("expected length 1200, got %d", generations.lastArticle.Length)
	}

	var body struct {
		Data creationdomain.Response `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.ID != "1" {
		t.Fatalf("expected creation id 1, got %q", body.Data.ID)
	}
}

func TestGenerateArticleQuotaExceeded(t *testing.T) {
	generations := &fakeGenerationService{err: generationdomain.ErrQuotaExceeded}
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, generations)

	resp := doJSON(srv, http.MethodPost, "/api/ai/generate-article", `{"prompt":"x"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Type != "quota_exceeded" {
		t.Fatalf("expected quota_exceeded, got %q", body.Error.Type)
	}
}

func TestPremiumRequiredMapsTo403(t *testing.T) {
	generations := &fakeGenerationService{err: generationdomain.ErrPremiumRequired}
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, generations)

	resp := doJSON(srv, http.MethodPost, "/api/ai/generate-blog-title", `{"prompt":"x"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestResumeReviewMissingFile(t *testing.T) {
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, &fakeGenerationService{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("note", "no file attached")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/ai/resume-review", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token-abc")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestResumeReviewUploadsFile(t *testing.T) {
	generations := &fakeGenerationService{
		resp: &creationdomain.Response{ID: "9", Type: creationdomain.TypeResumeReview},
	}
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, generations)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", "resume.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 fake")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/ai/resume-review", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token-abc")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGetCreationHiddenFromNonOwner(t *testing.T) {
	creations := &fakeCreationService{
		getResp: &creationdomain.Response{ID: "5", UserID: "someone_else", Publish: false},
	}
	srv := newTestServer(t, authedIdentity(), creations, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodGet, "/api/creations/5", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestGetCreationVisibleWhenPublished(t *testing.T) {
	creations := &fakeCreationService{
		getResp: &creationdomain.Response{ID: "5", UserID: "someone_else", Publish: true},
	}
	srv := newTestServer(t, authedIdentity(), creations, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodGet, "/api/creations/5", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestToggleLikeHandler(t *testing.T) {
	creations := &fakeCreationService{
		toggleResp: &creationdomain.ToggleLikeResponse{Liked: true, LikeCount: 4},
	}
	srv := newTestServer(t, authedIdentity(), creations, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodPost, "/api/creations/5/like", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if creations.lastToggle.CreationID != "5" || creations.lastToggle.UserID != "user_1" {
		t.Fatalf("unexpected toggle request: %+v", creations.lastToggle)
	}
}

func TestPublishCreationInvalidBody(t *testing.T) {
	srv := newTestServer(t, authedIdentity(), &fakeCreationService{}, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodPost, "/api/creations/5/publish", `{"publish": "yes"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestToggleLikeNotFoundMapsTo404(t *testing.T) {
	creations := &fakeCreationService{err: creationdomain.ErrNotFound}
	srv := newTestServer(t, authedIdentity(), creations, &fakeGenerationService{})

	resp := doJSON(srv, http.MethodPost, "/api/creations/42/like", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
