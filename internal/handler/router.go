package handler

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/kommunelab/lovassistent/internal/middleware"
	"github.com/kommunelab/lovassistent/internal/pkg/response"
)

type RouterDeps struct {
	Chat       *ChatHandler
	Checklists *ChecklistHandler
	Search     *SearchHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api/v1")
	api.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	api.POST("/chat", deps.Chat.Chat)
	api.GET("/chat/:session/messages", deps.Chat.History)
	api.POST("/checklist", deps.Checklists.Generate)
	api.POST("/search", deps.Search.Search)
	return r
}
