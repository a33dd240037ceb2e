package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

// --- Customers ---

type fakeCustomers struct {
	mu       sync.Mutex
	byID     map[primitive.ObjectID]*models.Customer
	err      error
	referErr error
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byID: map[primitive.ObjectID]*models.Customer{}}
}

func (f *fakeCustomers) put(c *models.Customer) *models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.byID[c.ID] = c
	return c
}

func (f *fakeCustomers) Create(_ context.Context, c *models.Customer) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if other.Phone == c.Phone || other.ReferralCode == c.ReferralCode {
			return repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) find(match func(*models.Customer) bool) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCustomers) FindByID(_ context.Context, id string) (*models.Customer, error) {
	return f.find(func(c *models.Customer) bool { return c.ID.Hex() == id })
}

func (f *fakeCustomers) FindByPhone(_ context.Context, phone string) (*models.Customer, error) {
	return f.find(func(c *models.Customer) bool { return c.Phone == phone })
}

func (f *fakeCustomers) FindByReferralCode(_ context.Context, code string) (*models.Customer, error) {
	return f.find(func(c *models.Customer) bool { return c.ReferralCode == code })
}

func (f *fakeCustomers) ReferralCodeExists(_ context.Context, code string) (bool, error) {
	_, err := f.find(func(c *models.Customer) bool { return c.ReferralCode == code })
	return err == nil, nil
}

func (f *fakeCustomers) mutate(id string, fn func(*models.Customer) error) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[oid]
	if !ok {
		return repository.ErrNotFound
	}
	return fn(c)
}

func (f *fakeCustomers) UpdateProfile(_ context.Context, id string, fields map[string]interface{}) error {
	return f.mutate(id, func(c *models.Customer) error {
		if v, ok := fields["name"].(string); ok {
			c.Name = v
		}
		if v, ok := fields["email"].(string); ok {
			c.Email = v
		}
		if v, ok := fields["address"].(string); ok {
			c.Address = v
		}
		return nil
	})
}

func (f *fakeCustomers) SetReferredBy(_ context.Context, id, referrerID string) error {
	if f.referErr != nil {
		return f.referErr
	}
	return f.mutate(id, func(c *models.Customer) error {
		if c.ReferredBy != "" {
			return repository.ErrConflict
		}
		c.ReferredBy = referrerID
		return nil
	})
}

func (f *fakeCustomers) IncrementReferralCount(_ context.Context, id string) error {
	return f.mutate(id, func(c *models.Customer) error {
		c.ReferralCount++
		return nil
	})
}

func (f *fakeCustomers) RecordOrder(_ context.Context, id string, amount, points int64) error {
	return f.mutate(id, func(c *models.Customer) error {
		c.TotalOrders++
		c.TotalSpent += amount
		c.LoyaltyPoints += points
		return nil
	})
}

func (f *fakeCustomers) get(id primitive.ObjectID) models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

// --- Scratch cards ---

type fakeCards struct {
	mu    sync.Mutex
	cards []*models.ScratchCard
	// failCreate makes the n-th Create (1-based) fail.
	failCreate int
	creates    int
}

func (f *fakeCards) Create(_ context.Context, card *models.ScratchCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.creates == f.failCreate {
		return errors.New("insert failed")
	}
	card.ID = primitive.NewObjectID()
	cp := *card
	f.cards = append(f.cards, &cp)
	return nil
}

func (f *fakeCards) FindByID(_ context.Context, id string) (*models.ScratchCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cards {
		if c.ID.Hex() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCards) ListByCustomer(_ context.Context, customerID string) ([]models.ScratchCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ScratchCard{}
	for i := len(f.cards) - 1; i >= 0; i-- {
		if f.cards[i].CustomerID == customerID {
			out = append(out, *f.cards[i])
		}
	}
	return out, nil
}

func (f *fakeCards) MarkScratched(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cards {
		if c.ID.Hex() == id {
			if c.Scratched {
				return repository.ErrConflict
			}
			c.Scratched = true
			c.ScratchedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeCards) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cards {
		if c.ID == id {
			f.cards = append(f.cards[:i], f.cards[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCards) forCustomer(id string) []models.ScratchCard {
	cards, _ := f.ListByCustomer(context.Background(), id)
	return cards
}

// --- Orders ---

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[uint]*models.Order
	nextID    uint
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uint]*models.Order{}, nextID: 1}
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.nextID
	f.nextID++
	o.CreatedAt = time.Now()
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id uint) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) List(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeOrders) ListByCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

// --- Favorites ---

type fakeFavorites struct {
	mu   sync.Mutex
	favs []models.FavoriteOrder
}

func (f *fakeFavorites) Create(_ context.Context, fav *models.FavoriteOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav.ID = primitive.NewObjectID()
	f.favs = append(f.favs, *fav)
	return nil
}

func (f *fakeFavorites) ListByCustomer(_ context.Context, customerID string) ([]models.FavoriteOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.FavoriteOrder{}
	for i := len(f.favs) - 1; i >= 0; i-- {
		if f.favs[i].CustomerID == customerID {
			out = append(out, f.favs[i])
		}
	}
	return out, nil
}

// --- OTP codes ---

type fakeOTPs struct {
	mu    sync.Mutex
	codes []*models.OTPCode
}

func (f *fakeOTPs) Create(_ context.Context, otp *models.OTPCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	otp.ID = primitive.NewObjectID()
	cp := *otp
	f.codes = append(f.codes, &cp)
	return nil
}

func (f *fakeOTPs) FindByPhoneAndCode(_ context.Context, phone, code string) (*models.OTPCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.codes) - 1; i >= 0; i-- {
		if c := f.codes[i]; c.Phone == phone && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOTPs) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == id {
			c.Verified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPs) RecordFailedAttempt(_ context.Context, phone string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.codes) - 1; i >= 0; i-- {
		if c := f.codes[i]; c.Phone == phone && !c.Verified {
			c.Attempts++
			return c.Attempts, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (f *fakeOTPs) HasVerified(_ context.Context, phone string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Phone == phone && c.Verified && c.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOTPs) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.codes {
		if c.ID == id {
			f.codes = append(f.codes[:i], f.codes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeOTPs) DeleteByPhone(_ context.Context, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.codes[:0]
	for _, c := range f.codes {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}
	f.codes = kept
	return nil
}

func (f *fakeOTPs) forPhone(phone string) []models.OTPCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OTPCode
	for _, c := range f.codes {
		if c.Phone == phone {
			out = append(out, *c)
		}
	}
	return out
}

// --- Inventory ---

type fakeInventory struct {
	mu    sync.Mutex
	stock map[string]int
	holds map[string]int
	calls []string
}

func (f *fakeInventory) Get(_ context.Context, productID string) (*repository.StockLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.stock[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.StockLevel{ProductID: productID, Available: n}, nil
}

func (f *fakeInventory) Set(_ context.Context, productID string, available int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[productID] = available
	return nil
}

func (f *fakeInventory) Reserve(_ context.Context, ref, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "reserve:"+productID)
	if f.holds == nil {
		f.holds = map[string]int{}
	}
	if _, ok := f.holds[ref+"/"+productID]; ok {
		return repository.ErrConflict
	}
	if f.stock[productID] < qty {
		return repository.ErrInsufficientStock
	}
	f.stock[productID] -= qty
	f.holds[ref+"/"+productID] = qty
	return nil
}

func (f *fakeInventory) settle(call, ref, productID string, restock bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call+":"+productID)
	qty, ok := f.holds[ref+"/"+productID]
	if !ok {
		return repository.ErrNotReserved
	}
	delete(f.holds, ref+"/"+productID)
	if restock {
		f.stock[productID] += qty
	}
	return nil
}

func (f *fakeInventory) Release(_ context.Context, ref, productID string) error {
	return f.settle("release", ref, productID, true)
}

func (f *fakeInventory) Commit(_ context.Context, ref, productID string) error {
	return f.settle("commit", ref, productID, false)
}

func (f *fakeInventory) held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.holds)
}

func (f *fakeInventory) level(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID]
}

// --- Products and cache ---

type fakeProducts struct {
	mu       sync.Mutex
	products map[string]models.Product
	lists    int
}

func newFakeProducts(ps ...models.Product) *fakeProducts {
	f := &fakeProducts{products: map[string]models.Product{}}
	for _, p := range ps {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) List(_ context.Context, category models.Category) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []models.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; ok {
		return repository.ErrDuplicate
	}
	f.products[p.ID] = *p
	return nil
}

func (f *fakeProducts) Save(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = *p
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProducts) SeedIfEmpty(_ context.Context, products []models.Product) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.products) > 0 {
		return 0, nil
	}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return len(products), nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[models.Category][]models.Product
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[models.Category][]models.Product{}}
}

func (f *fakeCache) Get(_ context.Context, category models.Category) ([]models.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ps, ok := f.entries[category]
	return ps, ok, nil
}

func (f *fakeCache) Set(_ context.Context, category models.Category, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[category] = products
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = map[models.Category][]models.Product{}
	f.invalidated++
	return nil
}

type fakePresigner struct {
	key         string
	contentType string
}

func (f *fakePresigner) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (*aws_pkg.PresignedUpload, error) {
	f.key = key
	f.contentType = contentType
	return &aws_pkg.PresignedUpload{
		UploadURL: "https://upload.example/" + key,
		ObjectURL: "https://cdn.example/" + key,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// --- Carts ---

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]models.Cart
}

func newFakeCarts() *fakeCarts { return &fakeCarts{carts: map[string]models.Cart{}} }

func (f *fakeCarts) Get(_ context.Context, id string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return &models.Cart{ID: id, Items: []models.CartItem{}}, nil
	}
	c.Items = append([]models.CartItem(nil), c.Items...)
	return &c, nil
}

func (f *fakeCarts) Save(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[cart.ID] = *cart
	return nil
}

func (f *fakeCarts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, id)
	return nil
}

// --- Contact ---

type fakeContacts struct {
	mu   sync.Mutex
	msgs []models.ContactMessage
}

func (f *fakeContacts) Create(_ context.Context, msg *models.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = uint(len(f.msgs) + 1)
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeContacts) List(_ context.Context, status models.ContactStatus, _, _ int) ([]models.ContactMessage, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ContactMessage
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if status == "" || f.msgs[i].Status == status {
			out = append(out, f.msgs[i])
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeContacts) UpdateStatus(_ context.Context, id uint, status models.ContactStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.msgs {
		if f.msgs[i].ID == id {
			f.msgs[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Admins ---

type fakeAdmins struct {
	mu     sync.Mutex
	admins []models.Admin
}

func (f *fakeAdmins) Create(_ context.Context, a *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.admins {
		if o.Username == a.Username {
			return repository.ErrDuplicate
		}
	}
	a.ID = uint(len(f.admins) + 1)
	f.admins = append(f.admins, *a)
	return nil
}

func (f *fakeAdmins) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			cp := a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) FindByID(_ context.Context, id uint) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.admins)), nil
}

// --- Events ---

type publishedEvent struct {
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, payload})
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// --- Randomness ---

// seqRand replays a fixed sequence of draws, cycling when exhausted.
type seqRand struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }
