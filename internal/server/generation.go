package server

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	"go.uber.org/zap"
)

type generateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

func (s *Server) GenerateArticle(c *gin.Context) {
	var req generateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.generationSvc.GenerateArticle(c.Request.Context(), generationdomain.ArticleRequest{
		User:   currentUser(c),
		Prompt: req.Prompt,
		Length: req.Length,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateBlogTitleRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) GenerateBlogTitle(c *gin.Context) {
	var req generateBlogTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.generationSvc.GenerateBlogTitle(c.Request.Context(), generationdomain.BlogTitleRequest{
		User:   currentUser(c),
		Prompt: req.Prompt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

func (s *Server) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.generationSvc.GenerateImage(c.Request.Context(), generationdomain.ImageRequest{
		User:    currentUser(c),
		Prompt:  req.Prompt,
		Publish: req.Publish,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveImageBackground(c *gin.Context) {
	path, cleanup, err := s.saveUpload(c, "image")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer cleanup()

	resp, err := s.generationSvc.RemoveBackground(c.Request.Context(), generationdomain.RemoveBackgroundRequest{
		User:      currentUser(c),
		ImagePath: path,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveImageObject(c *gin.Context) {
	path, cleanup, err := s.saveUpload(c, "image")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer cleanup()

	resp, err := s.generationSvc.RemoveObject(c.Request.Context(), generationdomain.RemoveObjectRequest{
		User:      currentUser(c),
		ImagePath: path,
		Object:    c.PostForm("object"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResumeReview(c *gin.Context) {
	header, err := formFile(c, "resume")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	path, cleanup, err := s.saveUploadHeader(c, header)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer cleanup()

	resp, err := s.generationSvc.ReviewResume(c.Request.Context(), generationdomain.ReviewResumeRequest{
		User:     currentUser(c),
		FilePath: path,
		FileName: header.Filename,
		FileSize: header.Size,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, generationdomain.ErrMissingFile
	}
	return header, nil
}

// saveUpload writes the named multipart file to the upload dir. The cleanup
// callback removes it and must run on every exit path.
func (s *Server) saveUpload(c *gin.Context, field string) (string, func(), error) {
	header, err := formFile(c, field)
	if err != nil {
		return "", nil, err
	}
	return s.saveUploadHeader(c, header)
}

func (s *Server) saveUploadHeader(c *gin.Context, header *multipart.FileHeader) (string, func(), error) {
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+filepath.Ext(header.Filename))
	if err := c.SaveUploadedFile(header, path); err != nil {
		s.log.Error("upload save failed", zap.Error(err))
		return "", nil, generationdomain.ErrStorageFailed
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("temp upload removal failed", zap.String("path", path), zap.Error(err))
		}
	}
	return path, cleanup, nil
}
