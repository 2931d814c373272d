package vote

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler 持有service，负责投票相关的HTTP处理
type Handler struct {
	service *Service
}

// NewHandler 构造投票handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateVoteRequestBody 定义了提交投票时请求体的JSON结构
type CreateVoteRequestBody struct {
	AnswerID uint   `json:"answer_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
}

// CreateVote 处理 POST /api/votes
func (h *Handler) CreateVote(c *gin.Context) {
	var body CreateVoteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	created, err := h.service.CreateVote(c.Request.Context(), body.AnswerID, body.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAnswerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": ErrAnswerNotFound.Error()})
		case errors.Is(err, ErrDuplicateVote):
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrDuplicateVote.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, created)
}

// ListVotesByAnswer 处理 GET /api/votes/answer/:answer_id
func (h *Handler) ListVotesByAnswer(c *gin.Context) {
	answerID, err := strconv.ParseUint(c.Param("answer_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的回答ID"})
		return
	}

	votes, err := h.service.ListVotesByAnswer(uint(answerID))
	if err != nil {
		if errors.Is(err, ErrAnswerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrAnswerNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, votes)
}

// GetVoteCount 处理 GET /api/votes/count/:answer_id
func (h *Handler) GetVoteCount(c *gin.Context) {
	answerID, err := strconv.ParseUint(c.Param("answer_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的回答ID"})
		return
	}

	count, err := h.service.GetVoteCount(uint(answerID))
	if err != nil {
		if errors.Is(err, ErrAnswerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrAnswerNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer_id": answerID, "vote_count": count})
}
