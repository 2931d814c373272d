package api

import (
	"github.com/SlpAus/oogiri-battle-backend/internal/answer"
	"github.com/SlpAus/oogiri-battle-backend/internal/topic"
	"github.com/SlpAus/oogiri-battle-backend/internal/vote"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, topicHandler *topic.Handler, answerHandler *answer.Handler, voteHandler *vote.Handler) {
	api := router.Group("/api")
	{
		// 题目相关的路由组 /api/topics
		topicRoutes := api.Group("/topics")
		{
			topicRoutes.GET("", topicHandler.ListTopics)
			topicRoutes.GET("/active", topicHandler.GetActiveTopic)
			topicRoutes.GET("/:id", topicHandler.GetTopicDetail)
			topicRoutes.POST("/generate", topicHandler.GenerateTopic)
			topicRoutes.POST("/generate/force", topicHandler.ForceGenerateTopic)
		}

		// 回答相关的路由组 /api/answers
		answerRoutes := api.Group("/answers")
		{
			answerRoutes.POST("", answerHandler.CreateAnswer)
			answerRoutes.GET("/topic/:topic_id", answerHandler.ListAnswersByTopic)
			answerRoutes.GET("/:id", answerHandler.GetAnswer)
			answerRoutes.POST("/evaluate", answerHandler.RequestEvaluation)
		}

		// 投票相关的路由组 /api/votes
		voteRoutes := api.Group("/votes")
		{
			voteRoutes.POST("", voteHandler.CreateVote)
			voteRoutes.GET("/answer/:answer_id", voteHandler.ListVotesByAnswer)
			voteRoutes.GET("/count/:answer_id", voteHandler.GetVoteCount)
		}
	}
}
