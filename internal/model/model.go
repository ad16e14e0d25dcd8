package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID
	Username        string
	NetworkStrength int
	ReferralPoints  int
	CreatedAt       time.Time
}

// Friendship is an unordered pair: (A,B) and (B,A) are the same edge.
type Friendship struct {
	ID        uuid.UUID
	User1ID   uuid.UUID
	User2ID   uuid.UUID
	CreatedAt time.Time
}

// Referral is a directed referrer->referred edge. A user can be referred
// at most once, so ReferredID is unique across the table.
type Referral struct {
	ID         uuid.UUID
	ReferrerID uuid.UUID
	ReferredID uuid.UUID
	CreatedAt  time.Time
}

type LogReason string

const (
	ReasonReferral      LogReason = "REFERRAL"
	ReasonReferred      LogReason = "REFERRED"
	ReasonFriendAdded   LogReason = "FRIEND_ADDED"
	ReasonFriendRemoved LogReason = "FRIEND_REMOVED"
)

// ActivityLogEntry is append-only and never mutated; time-ranged leaderboards
// are computed from sums over these rows.
type ActivityLogEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Amount    int
	Reason    LogReason
	CreatedAt time.Time
}

type Friend struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

type InfluentialFriend struct {
	ID              uuid.UUID
	Username        string
	NetworkStrength int
	CreatedAt       time.Time
}

type Referrer struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

type ReferralEntry struct {
	ID         uuid.UUID
	ReferredID uuid.UUID
	Username   string
	CreatedAt  time.Time
}

type UserProfile struct {
	User       User
	Friends    []Friend
	ReferredBy *Referrer
	Referrals  []ReferralEntry
}

type FriendPage struct {
	CurrentPage  int
	TotalPages   int
	TotalFriends int
	Friends      []Friend
}

type ReferralPage struct {
	TotalReferrals int
	Referrals      []ReferralEntry
}
