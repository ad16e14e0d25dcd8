package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory GraphStore with the same error contract as the
// Postgres repository, used for the concurrency and end-to-end properties
// that a call-recording mock cannot express.
type memStore struct {
	mu          sync.Mutex
	usersByName map[string]*model.User
	usersByID   map[uuid.UUID]*model.User
	friendships map[uuid.UUID]*model.Friendship
	referrals   []*model.Referral
	logs        []model.ActivityLogEntry
}

func newMemStore() *memStore {
	return &memStore{
		usersByName: make(map[string]*model.User),
		usersByID:   make(map[uuid.UUID]*model.User),
		friendships: make(map[uuid.UUID]*model.Friendship),
	}
}

func (s *memStore) CreateUser(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByName[username]; ok {
		return nil, repository.ErrAlreadyExists
	}
	u := &model.User{ID: uuid.New(), Username: username, CreatedAt: time.Now().UTC()}
	s.usersByName[username] = u
	s.usersByID[u.ID] = u
	copied := *u
	return &copied, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) CreateReferral(_ context.Context, referrerID, referredID uuid.UUID) (*model.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range s.referrals {
		if ref.ReferredID == referredID {
			return nil, repository.ErrAlreadyExists
		}
	}
	ref := &model.Referral{ID: uuid.New(), ReferrerID: referrerID, ReferredID: referredID, CreatedAt: time.Now().UTC()}
	s.referrals = append(s.referrals, ref)
	copied := *ref
	return &copied, nil
}

func (s *memStore) GetReferralByReferred(_ context.Context, referredID uuid.UUID) (*model.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range s.referrals {
		if ref.ReferredID == referredID {
			copied := *ref
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) ListReferralsByReferred(_ context.Context, referredID uuid.UUID) ([]model.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Referral
	for _, ref := range s.referrals {
		if ref.ReferredID == referredID {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (s *memStore) GetFriendship(_ context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.friendships {
		if (f.User1ID == user1ID && f.User2ID == user2ID) ||
			(f.User1ID == user2ID && f.User2ID == user1ID) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) CreateFriendship(_ context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.friendships {
		if (f.User1ID == user1ID && f.User2ID == user2ID) ||
			(f.User1ID == user2ID && f.User2ID == user1ID) {
			return nil, repository.ErrAlreadyExists
		}
	}
	f := &model.Friendship{ID: uuid.New(), User1ID: user1ID, User2ID: user2ID, CreatedAt: time.Now().UTC()}
	s.friendships[f.ID] = f
	copied := *f
	return &copied, nil
}

func (s *memStore) DeleteFriendship(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.friendships[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.friendships, id)
	return nil
}

func (s *memStore) UpdateUserCounters(_ context.Context, id uuid.UUID, strengthDelta, pointsDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.NetworkStrength += strengthDelta
	u.ReferralPoints += pointsDelta
	return nil
}

func (s *memStore) AppendActivityLog(_ context.Context, userID uuid.UUID, amount int, reason model.LogReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, model.ActivityLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *memStore) mustUser(username string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByName[username]
	if !ok {
		panic("unknown user " + username)
	}
	return *u
}

func (s *memStore) friendshipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.friendships)
}

func (s *memStore) logCount(reason model.LogReason) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.logs {
		if l.Reason == reason {
			n++
		}
	}
	return n
}
