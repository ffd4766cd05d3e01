package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libman/internal/domain"
	"libman/internal/service"
)

type bookCreateRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Author     string `json:"author" binding:"required"`
	Year       int    `json:"year" binding:"required"`
	Quantity   int    `json:"quantity" binding:"gte=0"`
}

type bookUpdateRequest struct {
	CategoryID *uint   `json:"category_id"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Year       *int    `json:"year"`
	Quantity   *int    `json:"quantity" binding:"omitempty,gte=0"`
}

func (s *Server) createBook(c *gin.Context) {
	var req bookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	book, err := s.catalogSvc.CreateBook(c.Request.Context(), service.BookInput{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Author:     req.Author,
		Year:       req.Year,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Book created successfully", book)
}

func (s *Server) updateBook(c *gin.Context) {
	id, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	book, err := s.catalogSvc.UpdateBook(c.Request.Context(), id, service.BookUpdate{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Author:     req.Author,
		Year:       req.Year,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Book updated successfully", book)
}

func (s *Server) listBooks(c *gin.Context) {
	books, err := s.catalogSvc.ListBooks(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Books fetched successfully", books)
}

func (s *Server) searchBooks(c *gin.Context) {
	books, err := s.catalogSvc.SearchBooks(
		c.Request.Context(),
		c.Query("book_name"),
		c.Query("category_name"),
	)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Books fetched successfully", books)
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	if err := s.catalogSvc.DeleteBook(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Book deleted successfully", nil)
}

// pathID parses a numeric path parameter, answering 400 itself on garbage.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondErr(c, domain.E(domain.KindInvalidInput, "invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}
