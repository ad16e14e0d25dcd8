package model

import "time"

type EventType string

const (
	EventRegister  EventType = "register"
	EventReferral  EventType = "referral"
	EventAddFriend EventType = "addfriend"
	EventUnfriend  EventType = "unfriend"
)

// Event is a tagged mutation record produced by the event source. The fields
// that are meaningful depend on Type: register uses Name, referral uses
// User/ReferredBy, addfriend and unfriend use User1Name/User2Name.
//
// The source guarantees neither uniqueness nor referential validity, which is
// why every handler re-checks its preconditions against the store.
type Event struct {
	Type       EventType
	Name       string
	User       string
	ReferredBy string
	User1Name  string
	User2Name  string
	CreatedAt  time.Time
}
