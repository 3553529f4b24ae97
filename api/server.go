package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Server exposes the small HTTP surface the gallery frontend needs
// beyond plain reads: right now that is just the view counter.
type Server struct {
	promptRepo repository.PromptRepository
	listen     string
}

// NewServer creates an API server on the configured listen address.
func NewServer(promptRepo repository.PromptRepository, cfg *config.Config) *Server {
	return &Server{
		promptRepo: promptRepo,
		listen:     cfg.Server.Listen,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/prompts/:id/view", s.incrementView)
	return router
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	logger.Logger.Printf("API server listening on %s", s.listen)
	return s.Router().Run(s.listen)
}

func (s *Server) incrementView(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid prompt id"})
		return
	}

	count, err := s.promptRepo.IncrementViewCount(uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "prompt not found"})
			return
		}
		logger.Logger.Printf("Failed to increment view count for prompt %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "view_count": count})
}
