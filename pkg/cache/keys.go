package cache

import "fmt"

// Key builders. Every key lives under the stayhub: prefix so a shared Redis
// can be swept per-application.

// RoomSearchKey caches a room availability search result.
func RoomSearchKey(city, checkIn, checkOut string, guests int) string {
	return fmt.Sprintf("stayhub:search:%s:%s:%s:%d", city, checkIn, checkOut, guests)
}

// ActiveHoldKey indexes the account's current temporary booking for the
// fast-path duplicate-hold check. The transactional store remains the source
// of truth; this key only short-circuits the common double-click case.
func ActiveHoldKey(accountID string) string {
	return fmt.Sprintf("stayhub:hold:%s", accountID)
}

// RoomSearchPattern matches every cached search for invalidation.
func RoomSearchPattern() string {
	return "stayhub:search:*"
}
