package service

import (
	"context"
	"testing"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"
	"github.com/NaePawat/zentry-backend-challenge/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testUser(name string) *model.User {
	return &model.User{ID: uuid.New(), Username: name, CreatedAt: time.Now().UTC()}
}

func TestUserService_GetProfile(t *testing.T) {
	t.Run("full profile", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		alice := testUser("alice")
		bob := testUser("bob")
		carol := testUser("carol")

		edge := model.Friendship{ID: uuid.New(), User1ID: alice.ID, User2ID: bob.ID, CreatedAt: time.Now().UTC()}
		outgoing := model.Referral{ID: uuid.New(), ReferrerID: alice.ID, ReferredID: carol.ID, CreatedAt: time.Now().UTC()}
		incoming := model.Referral{ID: uuid.New(), ReferrerID: bob.ID, ReferredID: alice.ID}

		repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
		repo.On("ListFriendships", mock.Anything, alice.ID, time.Time{}, time.Time{}, 0, 0).
			Return([]model.Friendship{edge}, nil)
		repo.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)
		repo.On("GetReferralByReferred", mock.Anything, alice.ID).Return(&incoming, nil)
		repo.On("ListReferralsByReferrer", mock.Anything, alice.ID, time.Time{}, time.Time{}).
			Return([]model.Referral{outgoing}, nil)
		repo.On("GetUserByID", mock.Anything, carol.ID).Return(carol, nil)

		svc := NewUserService(repo)
		profile, err := svc.GetProfile(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, alice.Username, profile.User.Username)
		require.Len(t, profile.Friends, 1)
		assert.Equal(t, "bob", profile.Friends[0].Username)
		require.NotNil(t, profile.ReferredBy)
		assert.Equal(t, "bob", profile.ReferredBy.Username)
		require.Len(t, profile.Referrals, 1)
		assert.Equal(t, "carol", profile.Referrals[0].Username)
	})

	t.Run("no referrer", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		alice := testUser("alice")

		repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
		repo.On("ListFriendships", mock.Anything, alice.ID, time.Time{}, time.Time{}, 0, 0).
			Return([]model.Friendship{}, nil)
		repo.On("GetReferralByReferred", mock.Anything, alice.ID).Return(nil, repository.ErrNotFound)
		repo.On("ListReferralsByReferrer", mock.Anything, alice.ID, time.Time{}, time.Time{}).
			Return([]model.Referral{}, nil)

		svc := NewUserService(repo)
		profile, err := svc.GetProfile(context.Background(), "alice")

		require.NoError(t, err)
		assert.Nil(t, profile.ReferredBy)
		assert.Empty(t, profile.Friends)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		svc := NewUserService(repo)
		_, err := svc.GetProfile(context.Background(), "ghost")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_GetFriends(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	t.Run("invalid range", func(t *testing.T) {
		svc := NewUserService(&mocks.MockGraphReader{})
		_, err := svc.GetFriends(context.Background(), "alice", to, from, 1, 10)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		svc := NewUserService(&mocks.MockGraphReader{})

		_, err := svc.GetFriends(context.Background(), "alice", from, to, 1, 0)
		assert.ErrorIs(t, err, ErrInvalidPagination)

		_, err = svc.GetFriends(context.Background(), "alice", from, to, 0, 10)
		assert.ErrorIs(t, err, ErrInvalidPagination)
	})

	t.Run("pagination math", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		alice := testUser("alice")
		bob := testUser("bob")
		edge := model.Friendship{ID: uuid.New(), User1ID: bob.ID, User2ID: alice.ID, CreatedAt: from.Add(time.Hour)}

		repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
		repo.On("CountFriendships", mock.Anything, alice.ID, from, to).Return(21, nil)
		// page 2 with limit 10 starts at offset 10
		repo.On("ListFriendships", mock.Anything, alice.ID, from, to, 10, 10).
			Return([]model.Friendship{edge}, nil)
		repo.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)

		svc := NewUserService(repo)
		page, err := svc.GetFriends(context.Background(), "alice", from, to, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, page.CurrentPage)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 21, page.TotalFriends)
		require.Len(t, page.Friends, 1)
		assert.Equal(t, "bob", page.Friends[0].Username)
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		svc := NewUserService(repo)
		_, err := svc.GetFriends(context.Background(), "ghost", from, to, 1, 10)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_GetTopInfluentialFriends(t *testing.T) {
	repo := &mocks.MockGraphReader{}
	alice := testUser("alice")
	bob := testUser("bob")
	carol := testUser("carol")
	bob.NetworkStrength = 7
	carol.NetworkStrength = 3

	edges := []model.Friendship{
		{ID: uuid.New(), User1ID: alice.ID, User2ID: bob.ID},
		{ID: uuid.New(), User1ID: carol.ID, User2ID: alice.ID},
	}

	repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
	repo.On("ListFriendships", mock.Anything, alice.ID, time.Time{}, time.Time{}, 0, 0).
		Return(edges, nil)
	repo.On("GetTopUsersByIDs", mock.Anything, []uuid.UUID{bob.ID, carol.ID}, 3).
		Return([]model.User{*bob, *carol}, nil)

	svc := NewUserService(repo)
	top, err := svc.GetTopInfluentialFriends(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, 7, top[0].NetworkStrength)
	assert.Equal(t, "carol", top[1].Username)
	repo.AssertExpectations(t)
}

func TestUserService_GetReferrals(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	t.Run("invalid range", func(t *testing.T) {
		svc := NewUserService(&mocks.MockGraphReader{})
		_, err := svc.GetReferrals(context.Background(), "alice", to, from)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("resolves referred usernames", func(t *testing.T) {
		repo := &mocks.MockGraphReader{}
		alice := testUser("alice")
		bob := testUser("bob")
		ref := model.Referral{ID: uuid.New(), ReferrerID: alice.ID, ReferredID: bob.ID, CreatedAt: from.Add(time.Hour)}

		repo.On("GetUserByUsername", mock.Anything, "alice").Return(alice, nil)
		repo.On("CountReferralsByReferrer", mock.Anything, alice.ID, from, to).Return(1, nil)
		repo.On("ListReferralsByReferrer", mock.Anything, alice.ID, from, to).
			Return([]model.Referral{ref}, nil)
		repo.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)

		svc := NewUserService(repo)
		page, err := svc.GetReferrals(context.Background(), "alice", from, to)

		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalReferrals)
		require.Len(t, page.Referrals, 1)
		assert.Equal(t, "bob", page.Referrals[0].Username)
		assert.Equal(t, bob.ID, page.Referrals[0].ReferredID)
	})
}
