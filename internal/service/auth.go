package service

import (
	"context"

	"gorm.io/gorm"

	"libman/internal/auth"
	"libman/internal/domain"
	"libman/internal/log"
	"libman/internal/model"
	"libman/internal/repository"
)

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *auth.TokenIssuer
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates a borrower account. The email must be unused.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (model.User, error) {
	return s.createUser(ctx, name, email, password, model.RoleBorrower)
}

// CreateAdmin creates an administrator account; used by the CLI seed
// command, never exposed over HTTP.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (model.User, error) {
	return s.createUser(ctx, name, email, password, model.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password, role string) (model.User, error) {
	users := repository.NewUserRepo(s.db)
	taken, err := users.EmailTaken(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, domain.E(domain.KindConflict, "email already registered")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, domain.Storage(err)
	}
	user := model.User{Name: name, Email: email, Password: hash, Role: role}
	if err := users.Create(ctx, &user); err != nil {
		return model.User{}, err
	}
	log.GetLogger(ctx).WithField("user_id", user.ID).WithField("role", role).Info("user registered")
	return user, nil
}

// Login verifies the credentials and issues a bearer token carrying the
// user's email, name and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	user, err := repository.NewUserRepo(s.db).GetByEmail(ctx, email)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return "", model.User{}, domain.E(domain.KindUnauthorized, "email is incorrect")
		}
		return "", model.User{}, err
	}
	if !auth.VerifyPassword(password, user.Password) {
		return "", model.User{}, domain.E(domain.KindUnauthorized, "password is incorrect")
	}
	token, err := s.tokens.Issue(user.Email, user.Name, user.Role)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

// UserByEmail resolves the account behind a verified token subject.
func (s *AuthService) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return repository.NewUserRepo(s.db).GetByEmail(ctx, email)
}
