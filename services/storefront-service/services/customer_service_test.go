package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/services"
)

type customerFixture struct {
	customers *fakeCustomers
	cards     *fakeCards
	orders    *fakeOrders
	favorites *fakeFavorites
	otps      *fakeOTPs
	events    *recordingPublisher
	svc       services.CustomerService
}

func newCustomerFixture(cfg services.CustomerServiceConfig) *customerFixture {
	f := &customerFixture{
		customers: newFakeCustomers(),
		cards:     &fakeCards{},
		orders:    newFakeOrders(),
		favorites: &fakeFavorites{},
		otps:      &fakeOTPs{},
		events:    &recordingPublisher{},
	}
	rng := &seqRand{vals: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	loyalty := services.NewLoyaltyService(f.customers, f.cards, f.events, rng, zap.NewNop())
	f.svc = services.NewCustomerService(f.customers, f.orders, f.favorites, f.otps, loyalty, rng, cfg, zap.NewNop())
	return f
}

func registerReq(phone string) *models.RegisterCustomerRequest {
	return &models.RegisterCustomerRequest{
		Name:     "  Awa Koné ",
		Phone:    phone,
		Email:    "awa@example.ci",
		Password: "secret123",
		Address:  "Cocody, Abidjan",
	}
}

func TestCustomerService_Register_Success(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	require.NoError(t, f.otps.Create(ctx, &models.OTPCode{Phone: "+225707070707", Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}))

	c, serr := f.svc.Register(ctx, registerReq("07 07 07 07 07"))
	require.Nil(t, serr)

	assert.False(t, c.ID.IsZero())
	assert.Equal(t, "Awa Koné", c.Name)
	assert.Equal(t, "+225707070707", c.Phone)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, c.ReferralCode)
	assert.NotEqual(t, "secret123", c.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("secret123")))
	assert.Zero(t, c.LoyaltyPoints)
	assert.Zero(t, c.TotalOrders)

	// pending codes for the phone are cleared
	assert.Empty(t, f.otps.forPhone("+225707070707"))
}

func TestCustomerService_Register_DuplicatePhone(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	_, serr := f.svc.Register(ctx, registerReq("0707070707"))
	require.Nil(t, serr)

	_, serr = f.svc.Register(ctx, registerReq("+225 707070707"))
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusConflict, serr.StatusCode)
	assert.Equal(t, "Ce numéro de téléphone est déjà utilisé", serr.Message)
}

func TestCustomerService_Register_RequiresVerifiedPhone(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{RequireVerifiedPhone: true})
	ctx := context.Background()

	_, serr := f.svc.Register(ctx, registerReq("0707070707"))
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)

	require.NoError(t, f.otps.Create(ctx, &models.OTPCode{
		Phone: "+225707070707", Code: "123456", Verified: true, ExpiresAt: time.Now().Add(5 * time.Minute),
	}))
	_, serr = f.svc.Register(ctx, registerReq("0707070707"))
	assert.Nil(t, serr)
}

func TestCustomerService_Register_WithReferralCode(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	referrer := f.customers.put(&models.Customer{Name: "Koffi", Phone: "+225700000009", ReferralCode: "KOF123"})

	req := registerReq("0707070707")
	req.ReferralCode = "kof123"
	c, serr := f.svc.Register(ctx, req)
	require.Nil(t, serr)

	assert.Equal(t, referrer.ID.Hex(), f.customers.get(c.ID).ReferredBy)
	assert.Len(t, f.cards.forCustomer(c.ID.Hex()), 1)
	assert.Len(t, f.cards.forCustomer(referrer.ID.Hex()), 1)
}

func TestCustomerService_Register_BadReferralCodeStillRegisters(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	req := registerReq("0707070707")
	req.ReferralCode = "ZZZZZZ"

	c, serr := f.svc.Register(context.Background(), req)
	require.Nil(t, serr)
	assert.Empty(t, f.customers.get(c.ID).ReferredBy)
	assert.Empty(t, f.cards.forCustomer(c.ID.Hex()))
}

func TestCustomerService_Login(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	_, serr := f.svc.Register(ctx, registerReq("0707070707"))
	require.Nil(t, serr)

	c, serr := f.svc.Login(ctx, &models.CustomerLoginRequest{Phone: "07 07 07 07 07", Password: "secret123"})
	require.Nil(t, serr)
	assert.Equal(t, "+225707070707", c.Phone)

	_, serr = f.svc.Login(ctx, &models.CustomerLoginRequest{Phone: "0707070707", Password: "wrong"})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusUnauthorized, serr.StatusCode)

	_, serr = f.svc.Login(ctx, &models.CustomerLoginRequest{Phone: "0101010101", Password: "secret123"})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusUnauthorized, serr.StatusCode)
	assert.Equal(t, "Numéro de téléphone ou mot de passe incorrect", serr.Message)
}

func TestCustomerService_UpdateProfile(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	c := f.customers.put(&models.Customer{Name: "Awa", Phone: "+225707070707", Address: "Cocody"})

	addr := " Plateau "
	require.Nil(t, f.svc.UpdateProfile(ctx, c.ID.Hex(), &models.UpdateProfileRequest{Address: &addr}))

	got, serr := f.svc.Get(ctx, c.ID.Hex())
	require.Nil(t, serr)
	assert.Equal(t, "Plateau", got.Address)
	assert.Equal(t, "Awa", got.Name)

	serr = f.svc.UpdateProfile(ctx, "ffffffffffffffffffffffff", &models.UpdateProfileRequest{Address: &addr})
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestCustomerService_MyOrders_EmptyIsNotNil(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	orders, serr := f.svc.MyOrders(context.Background(), "nobody")
	require.Nil(t, serr)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestCustomerService_AddFavoriteOrder(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	owner := "64b000000000000000000001"
	other := "64b000000000000000000002"
	notes := "Sonner deux fois"
	order := &models.Order{
		CustomerID:      &owner,
		CustomerName:    "Awa",
		DeliveryAddress: "Cocody",
		Notes:           &notes,
		Items: []models.OrderItem{
			{ProductID: "glacons-5kg", ProductName: "Glaçons (Sac 5kg)", ProductUnit: "sac", Quantity: 3, PricePerUnit: 1000, TotalPrice: 3000},
		},
	}
	require.NoError(t, f.orders.Create(ctx, order))

	fav, serr := f.svc.AddFavoriteOrder(ctx, owner, order.ID)
	require.Nil(t, serr)
	assert.Equal(t, order.ID, fav.OrderID)
	assert.Equal(t, "Sonner deux fois", fav.Notes)
	require.Len(t, fav.Items, 1)
	assert.Equal(t, 3, fav.Items[0].Quantity)

	_, serr = f.svc.AddFavoriteOrder(ctx, other, order.ID)
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)

	_, serr = f.svc.AddFavoriteOrder(ctx, owner, 999)
	require.NotNil(t, serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)

	favs, serr := f.svc.FavoriteOrders(ctx, owner)
	require.Nil(t, serr)
	assert.Len(t, favs, 1)
	favs, serr = f.svc.FavoriteOrders(ctx, other)
	require.Nil(t, serr)
	assert.Empty(t, favs)
}

func TestCustomerService_AddFavoriteOrder_GuestOrder(t *testing.T) {
	f := newCustomerFixture(services.CustomerServiceConfig{})
	ctx := context.Background()
	notes := "Code portail 4411"
	guest := &models.Order{
		CustomerName:    "Koffi",
		DeliveryAddress: "Villa 12, Riviera 3",
		Notes:           &notes,
		Items: []models.OrderItem{
			{ProductID: "glacons-5kg", ProductName: "Glaçons (Sac 5kg)", ProductUnit: "sac", Quantity: 1, PricePerUnit: 1000, TotalPrice: 1000},
		},
	}
	require.NoError(t, f.orders.Create(ctx, guest))

	fav, serr := f.svc.AddFavoriteOrder(ctx, "64b000000000000000000002", guest.ID)

	require.NotNil(t, serr)
	assert.Nil(t, fav)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Equal(t, "Commande non trouvée", serr.Message)
	favs, _ := f.svc.FavoriteOrders(ctx, "64b000000000000000000002")
	assert.Empty(t, favs)
}
