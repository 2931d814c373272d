package topic

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler 持有service，负责题目相关的HTTP处理
type Handler struct {
	service *Service
}

// NewHandler 构造题目handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetActiveTopic 处理 GET /api/topics/active
func (h *Handler) GetActiveTopic(c *gin.Context) {
	topic, err := h.service.GetActiveTopic()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "当前没有进行中的题目"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, topic)
}

// GetTopicDetail 处理 GET /api/topics/:id
func (h *Handler) GetTopicDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的题目ID"})
		return
	}

	topic, err := h.service.GetTopicDetail(uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "题目不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, topic)
}

// GenerateTopic 处理 POST /api/topics/generate
// 生成在后台进行，这里只返回进度消息
func (h *Handler) GenerateTopic(c *gin.Context) {
	message, err := h.service.GenerateTopic()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ForceGenerateTopic 处理 POST /api/topics/generate/force
// 同步生成，失败时把原因放进500响应
func (h *Handler) ForceGenerateTopic(c *gin.Context) {
	topic, err := h.service.ForceGenerateTopic(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成题目失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "新题目已生成。ID: " + strconv.FormatUint(uint64(topic.ID), 10)})
}

// ListTopics 处理 GET /api/topics?limit=&offset=
func (h *Handler) ListTopics(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	topics, err := h.service.ListTopics(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, topics)
}
