package services

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

const bcryptCost = 10

type AdminService interface {
	Login(ctx context.Context, req *models.AdminLoginRequest) (*models.Admin, *ServiceError)
	// Current resolves a session subject to a live admin account.
	Current(ctx context.Context, adminID string) (*models.Admin, *ServiceError)
	CreateAdmin(ctx context.Context, req *models.CreateAdminRequest) (*models.Admin, *ServiceError)
	// BootstrapOpen is true while no admin account exists yet.
	BootstrapOpen(ctx context.Context) (bool, *ServiceError)
}

type adminServiceImpl struct {
	repo   repository.AdminRepository
	logger *zap.Logger
}

func NewAdminService(repo repository.AdminRepository, logger *zap.Logger) AdminService {
	return &adminServiceImpl{repo: repo, logger: logger}
}

func (s *adminServiceImpl) Login(ctx context.Context, req *models.AdminLoginRequest) (*models.Admin, *ServiceError) {
	invalid := newError(http.StatusUnauthorized, "Nom d'utilisateur ou mot de passe incorrect")

	admin, err := s.repo.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		s.logger.Error("Failed to load admin", zap.Error(err))
		return nil, internalError()
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return nil, invalid
	}

	s.logger.Info("Admin logged in", zap.Uint("admin_id", admin.ID))
	return admin, nil
}

func (s *adminServiceImpl) Current(ctx context.Context, adminID string) (*models.Admin, *ServiceError) {
	id, err := strconv.ParseUint(adminID, 10, 64)
	if err != nil {
		return nil, newError(http.StatusUnauthorized, msgUnauthenticated)
	}
	admin, err := s.repo.FindByID(ctx, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusUnauthorized, msgUnauthenticated)
	}
	if err != nil {
		s.logger.Error("Failed to load admin", zap.Error(err))
		return nil, internalError()
	}
	return admin, nil
}

func (s *adminServiceImpl) CreateAdmin(ctx context.Context, req *models.CreateAdminRequest) (*models.Admin, *ServiceError) {
	exists := newError(http.StatusConflict, "Ce nom d'utilisateur existe déjà")

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, exists
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to check admin username", zap.Error(err))
		return nil, internalError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, internalError()
	}

	admin := &models.Admin{Username: req.Username, Password: string(hash), Email: req.Email}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, exists
		}
		s.logger.Error("Failed to create admin", zap.Error(err))
		return nil, internalError()
	}

	s.logger.Info("Admin created", zap.String("username", admin.Username))
	return admin, nil
}

func (s *adminServiceImpl) BootstrapOpen(ctx context.Context) (bool, *ServiceError) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count admins", zap.Error(err))
		return false, internalError()
	}
	return n == 0, nil
}
