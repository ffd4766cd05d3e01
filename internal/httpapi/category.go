package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := s.catalogSvc.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Category created successfully", category)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "category_id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	category, err := s.catalogSvc.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Category updated successfully", category)
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.catalogSvc.ListCategories(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Categories fetched successfully", categories)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "category_id")
	if !ok {
		return
	}
	if err := s.catalogSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Category deleted successfully", nil)
}
