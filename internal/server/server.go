// Package server exposes the matching core over HTTP.
//
// Authentication is owned by the surrounding application; requests carry
// the already-authenticated user in the X-User-ID header.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codemate-app/matcher/internal/feed"
	"github.com/codemate-app/matcher/internal/matcher"
	"github.com/codemate-app/matcher/internal/store"
	"github.com/codemate-app/matcher/pkg/types"
)

const userIDHeader = "X-User-ID"

// Embedder is the provider used when a skill is added.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Server wires the chat matcher, feed aggregator, and profile store into
// HTTP handlers.
type Server struct {
	chat     *matcher.Service
	feed     *feed.Aggregator
	store    store.Store
	embedder Embedder
	logger   *zap.Logger
}

// New creates a Server.
func New(chat *matcher.Service, feedAgg *feed.Aggregator, st store.Store, embedder Embedder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		chat:     chat,
		feed:     feedAgg,
		store:    st,
		embedder: embedder,
		logger:   logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api", s.requireUser)
	{
		api.POST("/chatbot", s.handleChatbot)
		api.GET("/feed", s.handleFeed)
		api.GET("/users/filter", s.handleFilterUsers)

		api.GET("/profile", s.handleGetProfile)
		api.PUT("/profile", s.handleUpdateProfile)
		api.POST("/profile/skills", s.handleAddSkill)
		api.DELETE("/profile/skills/:name", s.handleRemoveSkill)
	}

	return router
}

// requireUser extracts the authenticated user ID set by the auth
// collaborator upstream.
func (s *Server) requireUser(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Authentication required",
		})
		return
	}
	c.Set("userID", userID)
	c.Next()
}

type chatbotRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleChatbot(c *gin.Context) {
	userID := c.GetString("userID")

	var req chatbotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Message is required"})
		return
	}

	resp, err := s.chat.Respond(c.Request.Context(), userID, req.Message)
	if err != nil {
		s.logger.Error("chatbot request failed",
			zap.String("user", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to get chatbot response."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"botResponse": resp.BotResponse,
		"matches":     resp.Matches,
	})
}

func (s *Server) handleFeed(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := s.feed.Build(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		s.logger.Error("feed build failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error while generating feed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feed": result})
}

func (s *Server) handleFilterUsers(c *gin.Context) {
	userID := c.GetString("userID")

	filter := store.Filter{
		Query:        c.Query("q"),
		Availability: c.Query("availability"),
		Location:     c.Query("location"),
		College:      c.Query("college"),
	}

	users, err := s.store.FilterUsers(c.Request.Context(), userID, filter)
	if err != nil {
		s.logger.Error("user filter failed", zap.String("user", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error during filter."})
		return
	}

	results := make([]types.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].Public())
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": user.Public()})
}

type profileUpdateRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	ProfilePic   *string `json:"profilePic"`
	Bio          *string `json:"bio"`
	Location     *string `json:"location"`
	Availability *string `json:"availability"`
	College      *string `json:"college"`
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	update := store.ProfileUpdate{
		Name:         req.Name,
		Email:        req.Email,
		ProfilePic:   req.ProfilePic,
		Bio:          req.Bio,
		Location:     req.Location,
		Availability: req.Availability,
		College:      req.College,
	}

	if err := s.store.UpdateProfile(c.Request.Context(), userID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}

	s.handleGetProfile(c)
}

type addSkillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

// handleAddSkill embeds the skill name and stores the resulting vector.
// The vector is computed exactly once, at add time; matching never
// re-embeds stored skills.
func (s *Server) handleAddSkill(c *gin.Context) {
	userID := c.GetString("userID")

	var req addSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Skill is required"})
		return
	}

	// Duplicate check before the embedding call, so a skill the user
	// already has never costs a provider round trip. The store's unique
	// constraint still backstops concurrent adds.
	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}
	if user.HasSkill(req.Skill) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Skill already exists"})
		return
	}

	vector, err := s.embedder.Embed(c.Request.Context(), req.Skill)
	if err != nil {
		s.logger.Error("skill embedding failed",
			zap.String("user", userID),
			zap.String("skill", req.Skill),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to generate skill embedding."})
		return
	}

	if err := s.store.AddSkill(c.Request.Context(), userID, req.Skill, vector); err != nil {
		if errors.Is(err, types.ErrDuplicateSkillName) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Skill already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}

	s.respondWithSkills(c, userID)
}

func (s *Server) handleRemoveSkill(c *gin.Context) {
	userID := c.GetString("userID")
	name := c.Param("name")

	if err := s.store.RemoveSkill(c.Request.Context(), userID, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Skill not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}

	s.respondWithSkills(c, userID)
}

func (s *Server) respondWithSkills(c *gin.Context, userID string) {
	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error."})
		return
	}

	skills := make([]string, 0, len(user.Skills))
	for _, sk := range user.Skills {
		skills = append(skills, sk.Name)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "skills": skills})
}
