package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

const referralCodeAttempts = 5

type CustomerService interface {
	Register(ctx context.Context, req *models.RegisterCustomerRequest) (*models.Customer, *ServiceError)
	Login(ctx context.Context, req *models.CustomerLoginRequest) (*models.Customer, *ServiceError)
	Get(ctx context.Context, customerID string) (*models.Customer, *ServiceError)
	UpdateProfile(ctx context.Context, customerID string, req *models.UpdateProfileRequest) *ServiceError
	MyOrders(ctx context.Context, customerID string) ([]models.Order, *ServiceError)
	AddFavoriteOrder(ctx context.Context, customerID string, orderID uint) (*models.FavoriteOrder, *ServiceError)
	FavoriteOrders(ctx context.Context, customerID string) ([]models.FavoriteOrder, *ServiceError)
}

type CustomerServiceConfig struct {
	// RequireVerifiedPhone refuses registration without a verified OTP.
	RequireVerifiedPhone bool
}

type customerServiceImpl struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	favorites repository.FavoriteRepository
	otps      repository.OTPRepository
	loyalty   LoyaltyService
	rng       Randomizer
	cfg       CustomerServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewCustomerService(
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	favorites repository.FavoriteRepository,
	otps repository.OTPRepository,
	loyalty LoyaltyService,
	rng Randomizer,
	cfg CustomerServiceConfig,
	logger *zap.Logger,
) CustomerService {
	if rng == nil {
		rng = defaultRandomizer{}
	}
	return &customerServiceImpl{
		customers: customers,
		orders:    orders,
		favorites: favorites,
		otps:      otps,
		loyalty:   loyalty,
		rng:       rng,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *customerServiceImpl) Register(ctx context.Context, req *models.RegisterCustomerRequest) (*models.Customer, *ServiceError) {
	phone := NormalizePhone(req.Phone)
	phoneTaken := newError(http.StatusConflict, "Ce numéro de téléphone est déjà utilisé")

	if _, err := s.customers.FindByPhone(ctx, phone); err == nil {
		return nil, phoneTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to check phone", zap.Error(err))
		return nil, internalError()
	}

	if s.cfg.RequireVerifiedPhone {
		ok, err := s.otps.HasVerified(ctx, phone, s.now())
		if err != nil {
			s.logger.Error("Failed to check phone verification", zap.Error(err))
			return nil, internalError()
		}
		if !ok {
			return nil, newError(http.StatusBadRequest, "Veuillez d'abord vérifier votre numéro de téléphone")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, internalError()
	}

	customer := &models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Address:      strings.TrimSpace(req.Address),
		CreatedAt:    s.now().UTC(),
	}

	for attempt := 0; ; attempt++ {
		code, err := s.uniqueReferralCode(ctx)
		if err != nil {
			s.logger.Error("Failed to generate referral code", zap.Error(err))
			return nil, internalError()
		}
		customer.ReferralCode = code

		err = s.customers.Create(ctx, customer)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error("Failed to create customer", zap.Error(err))
			return nil, internalError()
		}
		// Either the phone was registered concurrently or the code collided.
		if _, findErr := s.customers.FindByPhone(ctx, phone); findErr == nil {
			return nil, phoneTaken
		}
		if attempt+1 >= referralCodeAttempts {
			s.logger.Error("Referral code collisions exhausted", zap.Error(err))
			return nil, internalError()
		}
	}

	if err := s.otps.DeleteByPhone(ctx, phone); err != nil {
		s.logger.Warn("Failed to clear OTP codes", zap.Error(err))
	}

	if req.ReferralCode != "" {
		if svcErr := s.loyalty.ApplyReferral(ctx, customer.ID.Hex(), req.ReferralCode); svcErr != nil {
			s.logger.Info("Referral code not applied at registration",
				zap.String("customer_id", customer.ID.Hex()), zap.String("reason", svcErr.Message))
		}
	}

	s.logger.Info("Customer registered", zap.String("customer_id", customer.ID.Hex()))
	return customer, nil
}

func (s *customerServiceImpl) uniqueReferralCode(ctx context.Context) (string, error) {
	var code string
	for i := 0; i < referralCodeAttempts; i++ {
		code = GenerateReferralCode(s.rng)
		exists, err := s.customers.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return code, nil
}

func (s *customerServiceImpl) Login(ctx context.Context, req *models.CustomerLoginRequest) (*models.Customer, *ServiceError) {
	customer, err := s.customers.FindByPhone(ctx, NormalizePhone(req.Phone))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusUnauthorized, msgInvalidCredentials)
	}
	if err != nil {
		s.logger.Error("Failed to load customer", zap.Error(err))
		return nil, internalError()
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.Password)) != nil {
		return nil, newError(http.StatusUnauthorized, msgInvalidCredentials)
	}
	return customer, nil
}

func (s *customerServiceImpl) Get(ctx context.Context, customerID string) (*models.Customer, *ServiceError) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusNotFound, msgCustomerNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to load customer", zap.Error(err))
		return nil, internalError()
	}
	return customer, nil
}

func (s *customerServiceImpl) UpdateProfile(ctx context.Context, customerID string, req *models.UpdateProfileRequest) *ServiceError {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}

	err := s.customers.UpdateProfile(ctx, customerID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(http.StatusNotFound, msgCustomerNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return internalError()
	}
	return nil
}

func (s *customerServiceImpl) MyOrders(ctx context.Context, customerID string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list customer orders", zap.Error(err))
		return nil, internalError()
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *customerServiceImpl) AddFavoriteOrder(ctx context.Context, customerID string, orderID uint) (*models.FavoriteOrder, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(http.StatusNotFound, msgOrderNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to load order", zap.Error(err))
		return nil, internalError()
	}
	// guest orders belong to nobody, so they cannot be favourited either
	if order.CustomerID == nil || *order.CustomerID != customerID {
		return nil, newError(http.StatusNotFound, msgOrderNotFound)
	}

	fav := &models.FavoriteOrder{
		CustomerID:      customerID,
		OrderID:         order.ID,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       s.now().UTC(),
		Items:           make([]models.FavoriteItem, 0, len(order.Items)),
	}
	if order.Notes != nil {
		fav.Notes = *order.Notes
	}
	for _, it := range order.Items {
		fav.Items = append(fav.Items, models.FavoriteItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductUnit:  it.ProductUnit,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}

	if err := s.favorites.Create(ctx, fav); err != nil {
		s.logger.Error("Failed to save favorite order", zap.Error(err))
		return nil, internalError()
	}
	return fav, nil
}

func (s *customerServiceImpl) FavoriteOrders(ctx context.Context, customerID string) ([]models.FavoriteOrder, *ServiceError) {
	favs, err := s.favorites.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list favorite orders", zap.Error(err))
		return nil, internalError()
	}
	return favs, nil
}
