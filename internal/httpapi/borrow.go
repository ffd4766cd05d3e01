package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"libman/internal/model"
)

type borrowCreateRequest struct {
	BookID  uint   `json:"book_id" binding:"required"`
	DueDate string `json:"due_date" binding:"required,datetime=2006-01-02"`
}

func (s *Server) createBorrow(c *gin.Context) {
	var req borrowCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	// Format already validated by the datetime binding tag.
	dueDate, _ := time.Parse(dateLayout, req.DueDate)

	user := currentUser(c)
	borrow, err := s.borrowSvc.Borrow(c.Request.Context(), user.ID, req.BookID, dueDate)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Borrow created successfully", gin.H{
		"book":        borrow.Book.Title,
		"borrower":    borrow.User.Name,
		"borrow_date": borrow.BorrowDate.Format(dateLayout),
		"due_date":    borrow.DueDate.Format(dateLayout),
	})
}

func (s *Server) returnBorrow(c *gin.Context) {
	id, ok := pathID(c, "borrow_id")
	if !ok {
		return
	}
	user := currentUser(c)
	result, err := s.borrowSvc.RequestReturn(c.Request.Context(), user.ID, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	message := "Borrow returned successfully"
	if !result.Changed {
		if result.Borrow.Status == model.StatusWaitingApprove {
			message = "waiting for approve"
		} else {
			message = "Borrow already returned"
		}
	}
	respondOK(c, http.StatusOK, message, returnView(result.Borrow))
}

func (s *Server) approveReturn(c *gin.Context) {
	id, ok := pathID(c, "borrow_id")
	if !ok {
		return
	}
	result, err := s.borrowSvc.ApproveReturn(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	message := "Approve return book successfully"
	if !result.Changed {
		message = "Borrow already returned"
	}
	respondOK(c, http.StatusOK, message, returnView(result.Borrow))
}

func (s *Server) allBorrowed(c *gin.Context) {
	borrows, err := s.borrowSvc.ListAll(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "All borrowed books retrieved successfully", borrowViews(borrows))
}

func (s *Server) historyBorrow(c *gin.Context) {
	user := currentUser(c)
	borrows, err := s.borrowSvc.History(c.Request.Context(), user.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "History borrow", borrowViews(borrows))
}

func (s *Server) currentBorrow(c *gin.Context) {
	user := currentUser(c)
	borrows, err := s.borrowSvc.Current(c.Request.Context(), user.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Current borrow", borrowViews(borrows))
}
