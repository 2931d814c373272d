package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/api"
	"github.com/SlpAus/oogiri-battle-backend/internal/ai"
	"github.com/SlpAus/oogiri-battle-backend/internal/answer"
	"github.com/SlpAus/oogiri-battle-backend/internal/platform/config"
	"github.com/SlpAus/oogiri-battle-backend/internal/platform/database"
	"github.com/SlpAus/oogiri-battle-backend/internal/platform/shutdown"
	"github.com/SlpAus/oogiri-battle-backend/internal/platform/startup"
	"github.com/SlpAus/oogiri-battle-backend/internal/tasks"
	"github.com/SlpAus/oogiri-battle-backend/internal/topic"
	"github.com/SlpAus/oogiri-battle-backend/internal/vote"
	"github.com/SlpAus/oogiri-battle-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// OPENAI_API_KEY等敏感配置从.env加载，文件不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Redis)

	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// AI协作方作为依赖注入到各个service，而不是全局单例
	collaborator := ai.NewOpenAICollaborator(cfg.OpenAI)

	// 延迟任务队列承载"响应之后"的工作：题目生成、回答评分
	manager := lifecycle.NewManager()
	queue := tasks.NewQueue(256)
	queueHandle, err := manager.NewServiceHandle("task-queue")
	if err != nil {
		panic(fmt.Sprintf("注册任务队列失败: %v", err))
	}
	go queue.Start(queueHandle)

	topicService := topic.NewService(database.DB, collaborator, queue)
	answerService := answer.NewService(database.DB, collaborator, queue, database.RDB)
	voteService := vote.NewService(database.DB, collaborator)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "大喜利对战后端运行中"})
	})

	api.SetupRoutes(r, topic.NewHandler(topicService), answer.NewHandler(answerService), vote.NewHandler(voteService))

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()
	fmt.Println("服务器已准备就绪，开始监听 " + cfg.Server.Address)

	shutdown.NewCoordinator(manager).ListenForSignalsAndShutdown(server)
}
