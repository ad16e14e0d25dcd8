package mocks

import (
	"context"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockGraphStore struct {
	mock.Mock
}

func (m *MockGraphStore) CreateUser(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGraphStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGraphStore) CreateReferral(ctx context.Context, referrerID, referredID uuid.UUID) (*model.Referral, error) {
	args := m.Called(ctx, referrerID, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Referral), args.Error(1)
}

func (m *MockGraphStore) GetReferralByReferred(ctx context.Context, referredID uuid.UUID) (*model.Referral, error) {
	args := m.Called(ctx, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Referral), args.Error(1)
}

func (m *MockGraphStore) ListReferralsByReferred(ctx context.Context, referredID uuid.UUID) ([]model.Referral, error) {
	args := m.Called(ctx, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Referral), args.Error(1)
}

func (m *MockGraphStore) GetFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	args := m.Called(ctx, user1ID, user2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Friendship), args.Error(1)
}

func (m *MockGraphStore) CreateFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	args := m.Called(ctx, user1ID, user2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Friendship), args.Error(1)
}

func (m *MockGraphStore) DeleteFriendship(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGraphStore) UpdateUserCounters(ctx context.Context, id uuid.UUID, strengthDelta, pointsDelta int) error {
	args := m.Called(ctx, id, strengthDelta, pointsDelta)
	return args.Error(0)
}

func (m *MockGraphStore) AppendActivityLog(ctx context.Context, userID uuid.UUID, amount int, reason model.LogReason) error {
	args := m.Called(ctx, userID, amount, reason)
	return args.Error(0)
}
