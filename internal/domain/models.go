// Package domain defines the persistence models for supper jios, orders,
// participants, shared-surface registrations, and favourite items. These
// types are mapped with GORM and form the core data layer of the bot.
package domain

import (
	"strings"
	"time"
)

// JioStatus is the lifecycle state of a jio. The only legal transitions are
// open → closed and closed → open.
type JioStatus int

const (
	// JioOpen means the jio accepts new orders and item edits.
	JioOpen JioStatus = 0
	// JioClosed means the jio is frozen; participants may only declare payment.
	JioClosed JioStatus = 1
)

// PaidStatus is a participant's self-declared payment flag. It is not a
// verified payment; the host treats it as a bookkeeping signal only.
type PaidStatus int

const (
	NotPaid PaidStatus = 0
	Paid    PaidStatus = 1
)

// MaxRestaurantLen bounds the restaurant name, enforced at jio creation.
const MaxRestaurantLen = 32

// foodSep separates items inside Order.Food. Items are consolidated into a
// single tab-separated column instead of a child table; tabs cannot appear
// in inbound message text, so the encoding is unambiguous.
const foodSep = "\t"

// Jio represents one group ordering round tied to a restaurant.
//
// Fields:
//   - ID: autoincrement primary key, referenced by callback tokens and
//     deep links, so it must stay stable for the row's lifetime.
//   - OwnerID: the host; indexed for the "created jios" listing.
//   - Restaurant: ≤32 chars (MaxRestaurantLen).
//   - Description: free text shown under "Additional Information".
//   - Status: JioOpen or JioClosed.
//   - HostChatID / HostMessageID: address of the host control message;
//     null until the first render, overwritten on every re-render.
type Jio struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	OwnerID       int64     `gorm:"not null;index:idx_owner_jios"`
	Restaurant    string    `gorm:"type:varchar(32);not null"`
	Description   string    `gorm:"type:text;not null"`
	Status        JioStatus `gorm:"not null;default:0"`
	HostChatID    *int64
	HostMessageID *int64
	CreatedAt     time.Time
}

// TableName returns the database table name for Jio.
func (Jio) TableName() string { return "jios" }

// IsClosed reports whether the jio is closed to new orders.
func (j *Jio) IsClosed() bool { return j.Status == JioClosed }

// Order represents one participant's items within one jio. The composite
// primary key (JioID, UserID) guarantees at most one order per pair; creation
// is an idempotent get-or-create (see repo.EnsureOrder).
//
// MessageID addresses the participant's private order message; it is null
// until that message is first sent and overwritten on every resend.
type Order struct {
	JioID     int64      `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64      `gorm:"primaryKey;autoIncrement:false"`
	Food      string     `gorm:"type:text;not null"`
	Paid      PaidStatus `gorm:"not null;default:0"`
	MessageID *int64

	// Jio and User are FK associations used by list queries that need the
	// participant's display name alongside the items.
	Jio  Jio  `gorm:"foreignKey:JioID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// HasPaid reports whether the participant declared payment.
func (o *Order) HasPaid() bool { return o.Paid == Paid }

// Items splits the tab-separated food column into its item sequence.
// Insertion order is meaningful and duplicates are allowed.
func (o *Order) Items() []string {
	if o.Food == "" {
		return nil
	}
	return strings.Split(o.Food, foodSep)
}

// JoinItems encodes an item sequence back into the food column format.
func JoinItems(items []string) string { return strings.Join(items, foodSep) }

// User represents a remote participant. Rows are upserted on every
// interaction that carries fresh identity info, which keeps DisplayName and
// ChatID (the participant's reachable surface) from going stale.
type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	DisplayName string `gorm:"not null"`
	ChatID      int64  `gorm:"not null"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// SharedMessage records one shared-surface registration: a copy of the jio
// summary posted into an external chat. SurfaceID is an opaque address in a
// different format from (chat, message) pairs because broadcast-shared
// surfaces are addressed differently from direct messages. Rows are
// append-only; a jio may have arbitrarily many.
type SharedMessage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	JioID     int64  `gorm:"not null;index"`
	SurfaceID string `gorm:"uniqueIndex;not null"`

	Jio Jio `gorm:"foreignKey:JioID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SharedMessage.
func (SharedMessage) TableName() string { return "shared_messages" }

// FavouriteItem is a remembered (restaurant, food) quick-add shortcut.
// At most MaxFavouritesPerRestaurant rows exist per (user, restaurant), and
// (user, restaurant, food) is unique (enforced before insert).
type FavouriteItem struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	UserID     int64  `gorm:"not null;index:idx_user_restaurant_favs,priority:1"`
	Restaurant string `gorm:"type:varchar(32);not null;index:idx_user_restaurant_favs,priority:2"`
	Food       string `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for FavouriteItem.
func (FavouriteItem) TableName() string { return "favourite_items" }

// MaxFavouritesPerRestaurant bounds favourites per (user, restaurant) pair.
const MaxFavouritesPerRestaurant = 10

// InboxRecord marks a transport update as processed so webhook redeliveries
// are acknowledged without re-running side effects. Rows expire after a TTL
// and are lazily evicted.
type InboxRecord struct {
	UpdateID  int64     `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName returns the database table name for InboxRecord.
func (InboxRecord) TableName() string { return "inbox" }
