package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := s.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "User registered successfully", userView{
		ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role,
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	token, _, err := s.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Login successful", gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
