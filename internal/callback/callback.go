// Package callback implements the compact wire encoding carried by remote UI
// controls. A token is a fixed three-character action code followed by
// positional string arguments, joined with ':'. The catalog is a closed
// enumeration grouped by the first digit: jio creation and host actions (0xx),
// order mutation (1xx), closed-jio host actions (2xx), closed-jio participant
// actions (3xx), and favourites (4xx).
//
// Decoding is a routing signal, not a validated protocol: malformed or
// unknown tokens decode to KindUnknown and are answered by the fallback
// handler, never surfaced as errors.
package callback

import (
	"strconv"
	"strings"
)

// Kind is a three-character action code.
type Kind string

const (
	CreateJio         Kind = "000"
	SelectRestaurant  Kind = "001"
	AdditionalDetails Kind = "002"
	FinishedCreation  Kind = "003"

	AmendDescription       Kind = "010"
	CancelAmendDescription Kind = "011"
	FinishAmendDescription Kind = "012"

	CloseJio Kind = "020"

	ViewCreatedJios Kind = "030"
	CancelView      Kind = "031"
	ViewJoinedJios  Kind = "035"

	ResendMainMessage Kind = "040"
	OwnerAddOrder     Kind = "041"

	AddOrder     Kind = "100"
	ConfirmOrder Kind = "101"

	DeleteOrder       Kind = "120"
	CancelOrderAction Kind = "121"
	DeleteOrderItem   Kind = "122"

	RefreshOrder Kind = "130"

	ReopenJio Kind = "200"

	CreateOrderingList Kind = "210"
	Back               Kind = "211"

	PingAllUnpaid Kind = "220"

	DeclarePayment Kind = "300"
	UndoPayment    Kind = "310"

	FavouriteItem              Kind = "400" // 400:jio_id
	ConfirmFavourite           Kind = "401" // 401:jio_id:restaurant:item_idx
	RemoveFavourite            Kind = "402" // 402:jio_id:favourite_id
	MenuFavourites             Kind = "410"
	ViewFavouriteItems         Kind = "411" // 411:restaurant
	MenuRemoveFavourite        Kind = "412" // 412:restaurant:favourite_id
	MenuConfirmDeleteFavourite Kind = "413" // 413:restaurant:favourite_id

	Nop Kind = "999"

	// Unknown is the unrecognized-fallback routing signal; it is never
	// encoded into outbound tokens.
	Unknown Kind = ""
)

// sep delimits the action code and its arguments. Numeric references never
// contain it; a restaurant name may, so consumers that carry one re-join the
// middle arguments and read the trailing index positionally.
const sep = ":"

// catalog is the closed set of kinds Decode will recognize.
var catalog = map[Kind]struct{}{
	CreateJio: {}, SelectRestaurant: {}, AdditionalDetails: {}, FinishedCreation: {},
	AmendDescription: {}, CancelAmendDescription: {}, FinishAmendDescription: {},
	CloseJio: {}, ViewCreatedJios: {}, CancelView: {}, ViewJoinedJios: {},
	ResendMainMessage: {}, OwnerAddOrder: {},
	AddOrder: {}, ConfirmOrder: {}, DeleteOrder: {}, CancelOrderAction: {},
	DeleteOrderItem: {}, RefreshOrder: {},
	ReopenJio: {}, CreateOrderingList: {}, Back: {}, PingAllUnpaid: {},
	DeclarePayment: {}, UndoPayment: {},
	FavouriteItem: {}, ConfirmFavourite: {}, RemoveFavourite: {},
	MenuFavourites: {}, ViewFavouriteItems: {}, MenuRemoveFavourite: {},
	MenuConfirmDeleteFavourite: {},
	Nop:                        {},
}

// Encode joins an action kind and its positional arguments into a token.
func Encode(k Kind, args ...string) string {
	if len(args) == 0 {
		return string(k)
	}
	return string(k) + sep + strings.Join(args, sep)
}

// EncodeJio builds a token whose first argument is a jio identifier.
func EncodeJio(k Kind, jioID int64, extra ...string) string {
	args := append([]string{strconv.FormatInt(jioID, 10)}, extra...)
	return Encode(k, args...)
}

// Decode splits a token into its kind and arguments. Tokens whose code is not
// in the catalog yield (Unknown, nil); Decode never fails.
func Decode(token string) (Kind, []string) {
	parts := strings.Split(token, sep)
	k := Kind(parts[0])
	if _, ok := catalog[k]; !ok {
		return Unknown, nil
	}
	if len(parts) == 1 {
		return k, nil
	}
	return k, parts[1:]
}

// JioArg parses the first argument of a decoded token as a jio identifier.
func JioArg(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// DeepLinkPrefix starts every deep-link payload inviting a participant into
// a jio; the full payload is the prefix followed by the decimal jio ID.
const DeepLinkPrefix = "jio"

// DeepLinkPayload builds the deep-link payload for a jio.
func DeepLinkPayload(jioID int64) string {
	return DeepLinkPrefix + strconv.FormatInt(jioID, 10)
}

// ParseDeepLink extracts the jio ID from a deep-link payload. Payloads
// without the prefix, or with a non-numeric or negative suffix, report no
// match rather than an error.
func ParseDeepLink(payload string) (int64, bool) {
	suffix, ok := strings.CutPrefix(payload, DeepLinkPrefix)
	if !ok || suffix == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
