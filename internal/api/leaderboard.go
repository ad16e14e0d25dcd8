package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/service"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type leaderboardRoutes struct {
	ls service.LeaderboardServiceI
}

func NewLeaderboardRoutes(handler *gin.RouterGroup, ls service.LeaderboardServiceI) {
	r := &leaderboardRoutes{ls: ls}
	h := handler.Group("/leaderboard")
	{
		h.GET("", r.GetActivityLog)
		h.GET("/network-strength", r.GetNetworkStrengthLeaderboard)
		h.GET("/referral-points", r.GetReferralPointsLeaderboard)
	}
}

type ActivityLogResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"createdAt"`
}

type NetworkStrengthEntry struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	NetworkStrength int    `json:"networkStrength"`
}

type ReferralPointsEntry struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ReferralPoints int    `json:"referralPoints"`
}

func (r *leaderboardRoutes) GetActivityLog(c *gin.Context) {
	log := logger.Logger()

	logs, err := r.ls.GetActivityLog(c.Request.Context())
	if err != nil {
		log.Error("failed to get activity log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	out := make([]ActivityLogResponse, len(logs))
	for i, l := range logs {
		out[i] = ActivityLogResponse{
			ID:        l.ID.String(),
			UserID:    l.UserID.String(),
			Amount:    l.Amount,
			Reason:    string(l.Reason),
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, out)
}

func (r *leaderboardRoutes) GetNetworkStrengthLeaderboard(c *gin.Context) {
	users, ok := r.leaderboard(c, r.ls.GetNetworkStrengthLeaderboard)
	if !ok {
		return
	}

	out := make([]NetworkStrengthEntry, len(users))
	for i, u := range users {
		out[i] = NetworkStrengthEntry{
			ID:              u.ID.String(),
			Username:        u.Username,
			NetworkStrength: u.NetworkStrength,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (r *leaderboardRoutes) GetReferralPointsLeaderboard(c *gin.Context) {
	users, ok := r.leaderboard(c, r.ls.GetReferralPointsLeaderboard)
	if !ok {
		return
	}

	out := make([]ReferralPointsEntry, len(users))
	for i, u := range users {
		out[i] = ReferralPointsEntry{
			ID:             u.ID.String(),
			Username:       u.Username,
			ReferralPoints: u.ReferralPoints,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (r *leaderboardRoutes) leaderboard(
	c *gin.Context,
	query func(ctx context.Context, from, to time.Time) ([]model.User, error),
) ([]model.User, bool) {
	log := logger.Logger()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return nil, false
	}

	users, err := query(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' is later than 'to' date"})
			return nil, false
		}
		log.Error("failed to build leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return nil, false
	}
	return users, true
}
