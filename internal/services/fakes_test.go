package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/surface"
)

// ----- Fake repos -----
//
// Stateful in-memory fakes. The db argument is ignored throughout; services
// under test are constructed with a nil *gorm.DB.

type fakeJioRepo struct {
	jios   map[int64]*domain.Jio
	nextID int64

	// statusWrites counts UpdateJioStatus calls to prove the no-op
	// transitions never touch storage.
	statusWrites int
}

func newFakeJioRepo() *fakeJioRepo {
	return &fakeJioRepo{jios: map[int64]*domain.Jio{}, nextID: 1}
}

func (r *fakeJioRepo) CreateJio(ctx context.Context, db *gorm.DB, ownerID int64, restaurant, description string) (*domain.Jio, error) {
	j := &domain.Jio{ID: r.nextID, OwnerID: ownerID, Restaurant: restaurant, Description: description, Status: domain.JioOpen}
	r.jios[j.ID] = j
	r.nextID++
	out := *j
	return &out, nil
}

func (r *fakeJioRepo) GetJio(ctx context.Context, db *gorm.DB, id int64) (*domain.Jio, error) {
	j, ok := r.jios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *j
	return &out, nil
}

func (r *fakeJioRepo) UpdateJioStatus(ctx context.Context, db *gorm.DB, id int64, status domain.JioStatus) error {
	j, ok := r.jios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.statusWrites++
	j.Status = status
	return nil
}

func (r *fakeJioRepo) UpdateJioDescription(ctx context.Context, db *gorm.DB, id int64, description string) error {
	j, ok := r.jios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	j.Description = description
	return nil
}

func (r *fakeJioRepo) UpdateJioHostAddress(ctx context.Context, db *gorm.DB, id, chatID, messageID int64) error {
	j, ok := r.jios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	j.HostChatID, j.HostMessageID = &chatID, &messageID
	return nil
}

func (r *fakeJioRepo) ListCreatedJios(ctx context.Context, db *gorm.DB, ownerID int64, limit int, includeClosed bool) ([]domain.Jio, error) {
	var out []domain.Jio
	for _, j := range r.jios {
		if j.OwnerID != ownerID {
			continue
		}
		if !includeClosed && j.IsClosed() {
			continue
		}
		out = append(out, *j)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeJioRepo) ListJoinedJios(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Jio, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func orderKey(jioID, userID int64) string { return fmt.Sprintf("%d/%d", jioID, userID) }

func (r *fakeOrderRepo) EnsureOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	if o, ok := r.orders[orderKey(jioID, userID)]; ok {
		out := *o
		return &out, nil
	}
	o := &domain.Order{JioID: jioID, UserID: userID, User: domain.User{ID: userID}}
	r.orders[orderKey(jioID, userID)] = o
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) GetOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	o, ok := r.orders[orderKey(jioID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *o
	return &out, nil
}

func (r *fakeOrderRepo) ListOrders(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.JioID == jioID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateOrderFood(ctx context.Context, db *gorm.DB, jioID, userID int64, food string) error {
	o, ok := r.orders[orderKey(jioID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Food = food
	return nil
}

func (r *fakeOrderRepo) UpdateOrderPaid(ctx context.Context, db *gorm.DB, jioID, userID int64, paid domain.PaidStatus) error {
	o, ok := r.orders[orderKey(jioID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Paid = paid
	return nil
}

func (r *fakeOrderRepo) UpdateOrderMessageID(ctx context.Context, db *gorm.DB, jioID, userID, messageID int64) error {
	o, ok := r.orders[orderKey(jioID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.MessageID = &messageID
	return nil
}

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{users: map[int64]*domain.User{}} }

func (r *fakeUserRepo) UpsertUser(ctx context.Context, db *gorm.DB, id int64, displayName string, chatID int64) (*domain.User, error) {
	u := &domain.User{ID: id, DisplayName: displayName, ChatID: chatID}
	r.users[id] = u
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *u
	return &out, nil
}

type fakeFavouriteRepo struct {
	favourites map[int64]*domain.FavouriteItem
	nextID     int64
	creates    int
}

func newFakeFavouriteRepo() *fakeFavouriteRepo {
	return &fakeFavouriteRepo{favourites: map[int64]*domain.FavouriteItem{}, nextID: 1}
}

func (r *fakeFavouriteRepo) CountFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) (int64, error) {
	var n int64
	for _, f := range r.favourites {
		if f.UserID == userID && f.Restaurant == restaurant {
			n++
		}
	}
	return n, nil
}

func (r *fakeFavouriteRepo) FavouriteExists(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (bool, error) {
	for _, f := range r.favourites {
		if f.UserID == userID && f.Restaurant == restaurant && f.Food == food {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFavouriteRepo) CreateFavourite(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (*domain.FavouriteItem, error) {
	f := &domain.FavouriteItem{ID: r.nextID, UserID: userID, Restaurant: restaurant, Food: food}
	r.favourites[f.ID] = f
	r.nextID++
	r.creates++
	out := *f
	return &out, nil
}

func (r *fakeFavouriteRepo) GetFavourite(ctx context.Context, db *gorm.DB, id int64) (*domain.FavouriteItem, error) {
	f, ok := r.favourites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *f
	return &out, nil
}

func (r *fakeFavouriteRepo) DeleteFavourite(ctx context.Context, db *gorm.DB, id, userID int64) error {
	if f, ok := r.favourites[id]; ok && f.UserID == userID {
		delete(r.favourites, id)
	}
	return nil
}

func (r *fakeFavouriteRepo) ListFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) ([]domain.FavouriteItem, error) {
	var out []domain.FavouriteItem
	for _, f := range r.favourites {
		if f.UserID == userID && f.Restaurant == restaurant {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFavouriteRepo) ListFavouriteRestaurants(ctx context.Context, db *gorm.DB, userID int64) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, f := range r.favourites {
		if f.UserID == userID && !seen[f.Restaurant] {
			seen[f.Restaurant] = true
			out = append(out, f.Restaurant)
		}
	}
	return out, nil
}

type fakeShareRepo struct {
	shares map[int64][]domain.SharedMessage
	nextID int64
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: map[int64][]domain.SharedMessage{}, nextID: 1}
}

func (r *fakeShareRepo) CreateSharedMessage(ctx context.Context, db *gorm.DB, jioID int64, surfaceID string) (*domain.SharedMessage, error) {
	m := domain.SharedMessage{ID: r.nextID, JioID: jioID, SurfaceID: surfaceID}
	r.nextID++
	r.shares[jioID] = append(r.shares[jioID], m)
	return &m, nil
}

func (r *fakeShareRepo) ListSharedMessages(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.SharedMessage, error) {
	return append([]domain.SharedMessage(nil), r.shares[jioID]...), nil
}

// ----- Fake surface client -----

// fakeClient records every outbound push and can be told to fail specific
// targets.

type sentMessage struct {
	chatID int64
	text   string
	kb     surface.Keyboard
}

type editedMessage struct {
	addr surface.Address
	text string
	kb   surface.Keyboard
}

type fakeClient struct {
	sends       []sentMessage
	edits       []editedMessage
	sharedEdits []string
	cleared     []surface.Address
	answers     []string

	nextMessageID int64

	failEdits      map[surface.Address]error
	failSharedEdit map[string]error
	sendErr        error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		nextMessageID:  100,
		failEdits:      map[surface.Address]error{},
		failSharedEdit: map[string]error{},
	}
}

func (c *fakeClient) Send(ctx context.Context, chatID int64, text string, kb surface.Keyboard) (surface.Address, error) {
	if c.sendErr != nil {
		return surface.Address{}, c.sendErr
	}
	c.sends = append(c.sends, sentMessage{chatID: chatID, text: text, kb: kb})
	c.nextMessageID++
	return surface.Address{ChatID: chatID, MessageID: c.nextMessageID}, nil
}

func (c *fakeClient) SendPrompt(ctx context.Context, chatID int64, text string, replies surface.Reply) (surface.Address, error) {
	c.nextMessageID++
	return surface.Address{ChatID: chatID, MessageID: c.nextMessageID}, nil
}

func (c *fakeClient) Edit(ctx context.Context, addr surface.Address, text string, kb surface.Keyboard) error {
	if err := c.failEdits[addr]; err != nil {
		return err
	}
	c.edits = append(c.edits, editedMessage{addr: addr, text: text, kb: kb})
	return nil
}

func (c *fakeClient) EditShared(ctx context.Context, surfaceID string, text string, kb surface.Keyboard) error {
	if err := c.failSharedEdit[surfaceID]; err != nil {
		return err
	}
	c.sharedEdits = append(c.sharedEdits, surfaceID)
	return nil
}

func (c *fakeClient) ClearControls(ctx context.Context, addr surface.Address) error {
	c.cleared = append(c.cleared, addr)
	return nil
}

func (c *fakeClient) Answer(ctx context.Context, callbackID, notice string) error {
	c.answers = append(c.answers, notice)
	return nil
}

func (c *fakeClient) AnswerShare(ctx context.Context, queryID string, results []surface.ShareResult) error {
	return nil
}

func (c *fakeClient) DeepLink(payload string) string {
	return "https://chat.test/bot?start=" + payload
}
