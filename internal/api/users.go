package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/service"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type userRoutes struct {
	us service.UserServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI) {
	r := &userRoutes{us: us}
	h := handler.Group("/users")
	{
		h.GET("", r.GetUsers)
		h.GET("/:username", r.GetUser)
		h.GET("/:username/friends", r.GetUserFriends)
		h.GET("/:username/friends/top-influential", r.GetTopInfluentialFriends)
		h.GET("/:username/referrals", r.GetUserReferrals)
	}
}

type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	NetworkStrength int    `json:"networkStrength"`
	ReferralPoints  int    `json:"referralPoints"`
	CreatedAt       string `json:"createdAt"`
}

type FriendResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

type ReferrerResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

type ReferralResponse struct {
	ID         string `json:"id"`
	ReferredID string `json:"referredId"`
	Username   string `json:"username"`
	CreatedAt  string `json:"createdAt"`
}

type InfluentialFriendResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	NetworkStrength int    `json:"networkStrength"`
	CreatedAt       string `json:"createdAt"`
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		NetworkStrength: u.NetworkStrength,
		ReferralPoints:  u.ReferralPoints,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

func toFriendResponses(friends []model.Friend) []FriendResponse {
	out := make([]FriendResponse, len(friends))
	for i, f := range friends {
		out[i] = FriendResponse{
			ID:        f.ID.String(),
			Username:  f.Username,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func toReferralResponses(referrals []model.ReferralEntry) []ReferralResponse {
	out := make([]ReferralResponse, len(referrals))
	for i, ref := range referrals {
		out[i] = ReferralResponse{
			ID:         ref.ID.String(),
			ReferredID: ref.ReferredID.String(),
			Username:   ref.Username,
			CreatedAt:  ref.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

func (r *userRoutes) GetUsers(c *gin.Context) {
	log := logger.Logger()

	users, err := r.us.ListUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}

	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (r *userRoutes) GetUser(c *gin.Context) {
	log := logger.Logger()

	profile, err := r.us.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	var referredBy *ReferrerResponse
	if profile.ReferredBy != nil {
		referredBy = &ReferrerResponse{
			ID:        profile.ReferredBy.ID.String(),
			Username:  profile.ReferredBy.Username,
			CreatedAt: profile.ReferredBy.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       toUserResponse(profile.User),
		"friends":    toFriendResponses(profile.Friends),
		"referredBy": referredBy,
		"referrals":  toReferralResponses(profile.Referrals),
	})
}

func (r *userRoutes) GetUserFriends(c *gin.Context) {
	log := logger.Logger()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'page' parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit' parameter"})
		return
	}

	pageResult, err := r.us.GetFriends(c.Request.Context(), c.Param("username"), from, to, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' is later than 'to' date"})
		case errors.Is(err, service.ErrInvalidPagination):
			c.JSON(http.StatusBadRequest, gin.H{"error": "page and limit must be positive"})
		default:
			log.Error("failed to get user friends", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentPage":  pageResult.CurrentPage,
		"totalPages":   pageResult.TotalPages,
		"totalFriends": pageResult.TotalFriends,
		"friends":      toFriendResponses(pageResult.Friends),
	})
}

func (r *userRoutes) GetTopInfluentialFriends(c *gin.Context) {
	log := logger.Logger()

	friends, err := r.us.GetTopInfluentialFriends(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get top influential friends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	out := make([]InfluentialFriendResponse, len(friends))
	for i, f := range friends {
		out[i] = InfluentialFriendResponse{
			ID:              f.ID.String(),
			Username:        f.Username,
			NetworkStrength: f.NetworkStrength,
			CreatedAt:       f.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"friends": out})
}

func (r *userRoutes) GetUserReferrals(c *gin.Context) {
	log := logger.Logger()

	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}

	pageResult, err := r.us.GetReferrals(c.Request.Context(), c.Param("username"), from, to)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidTimeRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "'from' is later than 'to' date"})
		default:
			log.Error("failed to get user referrals", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalReferrals": pageResult.TotalReferrals,
		"referrals":      toReferralResponses(pageResult.Referrals),
	})
}

// parseTimeRange reads the required from/to RFC3339 query parameters; on
// failure it writes the 400 itself and returns ok=false.
func parseTimeRange(c *gin.Context) (from, to time.Time, ok bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' parameter"})
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' parameter"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
