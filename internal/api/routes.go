package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"challenge_web/internal/api/handlers"
	"challenge_web/internal/middleware"
	"challenge_web/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User)
	challengeHandler := handlers.NewChallengeHandler(services.Challenge)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager, services.Challenge)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 用戶認證相關
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/challenge")
	authorized.Use(middleware.AuthMiddleware())
	{
		// 挑戰房間相關
		rooms := authorized.Group("/rooms")
		{
			rooms.POST("", challengeHandler.CreateRoom)                 // 創建房間
			rooms.POST("/:id/join", challengeHandler.JoinRoom)          // 加入房間
			rooms.POST("/:id/leave", challengeHandler.LeaveRoom)        // 主動認輸
			rooms.GET("/:id/status", challengeHandler.GetRoomStatus)    // 房間狀態快照
			rooms.POST("/:id/submission", challengeHandler.SubmitResult) // 評測結果回調
		}

		// 即時入口，與 HTTP 入口共用同一套加入規則
		authorized.GET("/ws", wsHandler.HandleWebSocket)
	}
}
