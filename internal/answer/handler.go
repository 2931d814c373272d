package answer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler 持有service，负责回答相关的HTTP处理
type Handler struct {
	service *Service
}

// NewHandler 构造回答handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateAnswerRequestBody 定义了提交回答时请求体的JSON结构
type CreateAnswerRequestBody struct {
	TopicID  uint   `json:"topic_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
}

// EvaluationRequestBody 定义了手动评分请求体的JSON结构
type EvaluationRequestBody struct {
	AnswerID uint `json:"answer_id" binding:"required"`
}

// CreateAnswer 处理 POST /api/answers
func (h *Handler) CreateAnswer(c *gin.Context) {
	var body CreateAnswerRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	created, err := h.service.CreateAnswer(c.Request.Context(), body.TopicID, body.Content, body.UserName, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTopicNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": ErrTopicNotFound.Error()})
		case errors.Is(err, ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": ErrRateLimited.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, created)
}

// ListAnswersByTopic 处理 GET /api/answers/topic/:topic_id
func (h *Handler) ListAnswersByTopic(c *gin.Context) {
	topicID, err := strconv.ParseUint(c.Param("topic_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的题目ID"})
		return
	}

	answers, err := h.service.ListAnswersByTopic(uint(topicID))
	if err != nil {
		if errors.Is(err, ErrTopicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrTopicNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, answers)
}

// GetAnswer 处理 GET /api/answers/:id
func (h *Handler) GetAnswer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的回答ID"})
		return
	}

	found, err := h.service.GetAnswer(uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, found)
}

// RequestEvaluation 处理 POST /api/answers/evaluate
// 评分同步执行，响应中带着最新的分数和点评
func (h *Handler) RequestEvaluation(c *gin.Context) {
	var body EvaluationRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	evaluated, err := h.service.RequestEvaluation(c.Request.Context(), body.AnswerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, evaluated)
}
