package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	"github.com/inkwell-hq/inkwell/pkg/db/pagination"
)

func (s *Server) ListMyCreations(c *gin.Context) {
	resp, err := s.creationSvc.ListByUser(c.Request.Context(), creationdomain.ListRequest{
		UserID:     currentUser(c).ID,
		Pagination: bindPagination(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommunityCreations(c *gin.Context) {
	resp, err := s.creationSvc.ListPublished(c.Request.Context(), creationdomain.ListRequest{
		Pagination: bindPagination(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCreation(c *gin.Context) {
	resp, err := s.creationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// unpublished creations are visible to their owner only; leak nothing
	// about their existence to anyone else
	if resp.UserID != currentUser(c).ID && !resp.Publish {
		AbortWithError(c, creationdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleLikeCreation(c *gin.Context) {
	resp, err := s.creationSvc.ToggleLike(c.Request.Context(), creationdomain.ToggleLikeRequest{
		CreationID: c.Param("id"),
		UserID:     currentUser(c).ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordLikeToggle()
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type publishCreationRequest struct {
	Publish bool `json:"publish"`
}

func (s *Server) PublishCreation(c *gin.Context) {
	var req publishCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.creationSvc.SetPublish(c.Request.Context(), creationdomain.SetPublishRequest{
		CreationID: c.Param("id"),
		UserID:     currentUser(c).ID,
		Publish:    req.Publish,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func bindPagination(c *gin.Context) pagination.Pagination {
	size, _ := strconv.Atoi(c.Query("page_size"))
	return pagination.Pagination{
		PageToken: c.Query("page_token"),
		PageSize:  size,
	}
}
