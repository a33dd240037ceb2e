package controllers

import (
	"context"

	"github.com/stretchr/testify/mock"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

func svcErrAt(args mock.Arguments, i int) *services.ServiceError {
	if e, ok := args.Get(i).(*services.ServiceError); ok {
		return e
	}
	return nil
}

// --- Mock OrderService ---
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, customerID string, req *models.CreateOrderRequest) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, customerID, req)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}
func (m *MockOrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, *services.ServiceError) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Get(1).(int64), svcErrAt(args, 2)
}
func (m *MockOrderService) Get(ctx context.Context, id uint) (*models.Order, *services.ServiceError) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, svcErrAt(args, 1)
}
func (m *MockOrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id, status), 0)
}
func (m *MockOrderService) Delete(ctx context.Context, id uint) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id), 0)
}

// --- Mock CartService ---
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, cartID string) (*models.Cart, *services.ServiceError) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(*models.Cart)
	return c, svcErrAt(args, 1)
}
func (m *MockCartService) AddItem(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *services.ServiceError) {
	args := m.Called(ctx, cartID, productID, qty)
	c, _ := args.Get(0).(*models.Cart)
	return c, svcErrAt(args, 1)
}
func (m *MockCartService) UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*models.Cart, *services.ServiceError) {
	args := m.Called(ctx, cartID, productID, qty)
	c, _ := args.Get(0).(*models.Cart)
	return c, svcErrAt(args, 1)
}
func (m *MockCartService) RemoveItem(ctx context.Context, cartID, productID string) (*models.Cart, *services.ServiceError) {
	args := m.Called(ctx, cartID, productID)
	c, _ := args.Get(0).(*models.Cart)
	return c, svcErrAt(args, 1)
}
func (m *MockCartService) Clear(ctx context.Context, cartID string) *services.ServiceError {
	return svcErrAt(m.Called(ctx, cartID), 0)
}

// --- Mock OTPService ---
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Send(ctx context.Context, phone string) (*services.OTPSendResult, *services.ServiceError) {
	args := m.Called(ctx, phone)
	r, _ := args.Get(0).(*services.OTPSendResult)
	return r, svcErrAt(args, 1)
}
func (m *MockOTPService) Verify(ctx context.Context, phone, code string) (*services.OTPVerifyResult, *services.ServiceError) {
	args := m.Called(ctx, phone, code)
	r, _ := args.Get(0).(*services.OTPVerifyResult)
	return r, svcErrAt(args, 1)
}
func (m *MockOTPService) Clear(ctx context.Context, phone, code string) *services.ServiceError {
	return svcErrAt(m.Called(ctx, phone, code), 0)
}

// --- Mock CustomerService ---
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Register(ctx context.Context, req *models.RegisterCustomerRequest) (*models.Customer, *services.ServiceError) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.Customer)
	return c, svcErrAt(args, 1)
}
func (m *MockCustomerService) Login(ctx context.Context, req *models.CustomerLoginRequest) (*models.Customer, *services.ServiceError) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.Customer)
	return c, svcErrAt(args, 1)
}
func (m *MockCustomerService) Get(ctx context.Context, customerID string) (*models.Customer, *services.ServiceError) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*models.Customer)
	return c, svcErrAt(args, 1)
}
func (m *MockCustomerService) UpdateProfile(ctx context.Context, customerID string, req *models.UpdateProfileRequest) *services.ServiceError {
	return svcErrAt(m.Called(ctx, customerID, req), 0)
}
func (m *MockCustomerService) MyOrders(ctx context.Context, customerID string) ([]models.Order, *services.ServiceError) {
	args := m.Called(ctx, customerID)
	o, _ := args.Get(0).([]models.Order)
	return o, svcErrAt(args, 1)
}
func (m *MockCustomerService) AddFavoriteOrder(ctx context.Context, customerID string, orderID uint) (*models.FavoriteOrder, *services.ServiceError) {
	args := m.Called(ctx, customerID, orderID)
	f, _ := args.Get(0).(*models.FavoriteOrder)
	return f, svcErrAt(args, 1)
}
func (m *MockCustomerService) FavoriteOrders(ctx context.Context, customerID string) ([]models.FavoriteOrder, *services.ServiceError) {
	args := m.Called(ctx, customerID)
	f, _ := args.Get(0).([]models.FavoriteOrder)
	return f, svcErrAt(args, 1)
}

// --- Mock LoyaltyService ---
type MockLoyaltyService struct {
	mock.Mock
}

func (m *MockLoyaltyService) AvailableDiscount(ctx context.Context, customerID string) models.Discount {
	return m.Called(ctx, customerID).Get(0).(models.Discount)
}
func (m *MockLoyaltyService) ApplyReferral(ctx context.Context, customerID, code string) *services.ServiceError {
	return svcErrAt(m.Called(ctx, customerID, code), 0)
}
func (m *MockLoyaltyService) ScratchCards(ctx context.Context, customerID string) ([]models.ScratchCard, *services.ServiceError) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).([]models.ScratchCard)
	return c, svcErrAt(args, 1)
}
func (m *MockLoyaltyService) Scratch(ctx context.Context, customerID, cardID string) (*models.ScratchResult, *services.ServiceError) {
	args := m.Called(ctx, customerID, cardID)
	r, _ := args.Get(0).(*models.ScratchResult)
	return r, svcErrAt(args, 1)
}
func (m *MockLoyaltyService) RecordOrder(ctx context.Context, customerID string, total, points int64) error {
	return m.Called(ctx, customerID, total, points).Error(0)
}

// --- Mock CatalogService ---
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, category models.Category) ([]models.Product, *services.ServiceError) {
	args := m.Called(ctx, category)
	p, _ := args.Get(0).([]models.Product)
	return p, svcErrAt(args, 1)
}
func (m *MockCatalogService) Get(ctx context.Context, id string) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}
func (m *MockCatalogService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}
func (m *MockCatalogService) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *services.ServiceError) {
	args := m.Called(ctx, id, req)
	p, _ := args.Get(0).(*models.Product)
	return p, svcErrAt(args, 1)
}
func (m *MockCatalogService) Delete(ctx context.Context, id string) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id), 0)
}
func (m *MockCatalogService) ImageUploadURL(ctx context.Context, id, contentType string) (*aws_pkg.PresignedUpload, *services.ServiceError) {
	args := m.Called(ctx, id, contentType)
	u, _ := args.Get(0).(*aws_pkg.PresignedUpload)
	return u, svcErrAt(args, 1)
}
func (m *MockCatalogService) Seed(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- Mock AdminService ---
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Login(ctx context.Context, req *models.AdminLoginRequest) (*models.Admin, *services.ServiceError) {
	args := m.Called(ctx, req)
	a, _ := args.Get(0).(*models.Admin)
	return a, svcErrAt(args, 1)
}
func (m *MockAdminService) Current(ctx context.Context, adminID string) (*models.Admin, *services.ServiceError) {
	args := m.Called(ctx, adminID)
	a, _ := args.Get(0).(*models.Admin)
	return a, svcErrAt(args, 1)
}
func (m *MockAdminService) CreateAdmin(ctx context.Context, req *models.CreateAdminRequest) (*models.Admin, *services.ServiceError) {
	args := m.Called(ctx, req)
	a, _ := args.Get(0).(*models.Admin)
	return a, svcErrAt(args, 1)
}
func (m *MockAdminService) BootstrapOpen(ctx context.Context) (bool, *services.ServiceError) {
	args := m.Called(ctx)
	return args.Bool(0), svcErrAt(args, 1)
}

// --- Mock ContactService ---
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, req *models.CreateContactRequest) (*models.ContactMessage, *services.ServiceError) {
	args := m.Called(ctx, req)
	msg, _ := args.Get(0).(*models.ContactMessage)
	return msg, svcErrAt(args, 1)
}
func (m *MockContactService) List(ctx context.Context, status models.ContactStatus, page, limit int) ([]models.ContactMessage, int64, *services.ServiceError) {
	args := m.Called(ctx, status, page, limit)
	msgs, _ := args.Get(0).([]models.ContactMessage)
	return msgs, args.Get(1).(int64), svcErrAt(args, 2)
}
func (m *MockContactService) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) *services.ServiceError {
	return svcErrAt(m.Called(ctx, id, status), 0)
}
