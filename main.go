package main

import (
	"fmt"
	"log"
	"os"

	_ "llm_queue/docs"
	"llm_queue/internal/auth"
	"llm_queue/internal/handlers"
	"llm_queue/internal/models"
	"llm_queue/internal/storage"
	"llm_queue/internal/tasks"
	"llm_queue/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Очередь допуска к LLM-бэкенду
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	handlers.InitQueueStore()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", auth.QueueSessionMiddleware(), handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
		authGroup.POST("/signout", auth.AuthMiddleware(), handlers.SignOut)
		authGroup.GET("/me", auth.AuthMiddleware(), handlers.Me)
	}

	queueGroup := r.Group("/queue")
	{
		queueGroup.POST("/join", handlers.JoinQueueHandler)
		queueGroup.POST("/leave", handlers.LeaveQueueHandler)
		queueGroup.POST("/confirm", handlers.ConfirmQueueHandler)
		queueGroup.POST("/heartbeat", handlers.HeartbeatQueueHandler)
		queueGroup.POST("/idle", handlers.IdleQueueHandler)
		queueGroup.GET("/status/:user_id", handlers.GetQueueStatusHandler)
		queueGroup.GET("/metrics", handlers.GetQueueMetricsHandler)
		queueGroup.GET("/timers/:user_id", handlers.GetQueueTimersHandler)
		queueGroup.GET("/ws/:channel", ws.QueueWebSocketHandler)
	}

	r.GET("/profile/queue", auth.AuthMiddleware(), handlers.GetProfileQueueHandler)

	apiGroup := r.Group("/api", auth.AuthMiddleware())
	{
		apiGroup.GET("/queue/entries", handlers.GetQueueEntriesHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
