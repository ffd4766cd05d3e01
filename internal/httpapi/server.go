package httpapi

import (
	"github.com/gin-gonic/gin"

	"libman/internal/auth"
	"libman/internal/model"
	"libman/internal/service"
)

// Server holds the services behind the HTTP surface and builds the router.
type Server struct {
	authSvc    *service.AuthService
	catalogSvc *service.CatalogService
	borrowSvc  *service.BorrowService
	tokens     *auth.TokenIssuer
}

func NewServer(
	authSvc *service.AuthService,
	catalogSvc *service.CatalogService,
	borrowSvc *service.BorrowService,
	tokens *auth.TokenIssuer,
) *Server {
	return &Server{
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		borrowSvc:  borrowSvc,
		tokens:     tokens,
	}
}

// Router wires all routes. Catalog writes and return approval are admin
// only; browsing the catalog needs no account at all.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	book := api.Group("/book")
	book.GET("", s.listBooks)
	book.GET("/search", s.searchBooks)
	bookAdmin := book.Group("", s.authenticate(), requireRoles(model.RoleAdmin))
	bookAdmin.POST("", s.createBook)
	bookAdmin.PUT("/:book_id", s.updateBook)
	bookAdmin.DELETE("/:book_id", s.deleteBook)

	category := api.Group("/category")
	category.GET("", s.listCategories)
	categoryAdmin := category.Group("", s.authenticate(), requireRoles(model.RoleAdmin))
	categoryAdmin.POST("", s.createCategory)
	categoryAdmin.PUT("/:category_id", s.updateCategory)
	categoryAdmin.DELETE("/:category_id", s.deleteCategory)

	borrow := api.Group("/borrow", s.authenticate())
	borrow.POST("", s.createBorrow)
	borrow.PUT("/return/:borrow_id", s.returnBorrow)
	borrow.PUT("/approve_return/:borrow_id", requireRoles(model.RoleAdmin), s.approveReturn)
	borrow.GET("/history", s.historyBorrow)
	borrow.GET("/current_borrow", s.currentBorrow)
	borrow.GET("/all_borrowed", requireRoles(model.RoleAdmin, model.RoleBorrower), s.allBorrowed)

	return router
}
