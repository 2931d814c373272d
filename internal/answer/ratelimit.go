package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/models"
)

const (
	// rateLimitWindow 定义了同一用户两次回答之间的最小间隔
	rateLimitWindow = 60 * time.Second
	// rateLimitKeyPrefix 是Redis限流键的前缀
	rateLimitKeyPrefix = "answer_limit:"
)

// checkRateLimit 判断该用户当前是否允许提交回答。
// Redis可用时先查快速通道，未命中再回到数据库做权威检查：
// 只要该用户最近60秒内存在一条回答记录，就拒绝本次提交。
func (s *Service) checkRateLimit(ctx context.Context, userID string) (bool, error) {
	if s.rdb != nil {
		exists, err := s.rdb.Exists(ctx, rateLimitKeyPrefix+userID).Result()
		if err != nil {
			// Redis故障不阻塞业务，降级到数据库检查
			fmt.Printf("警告: 限流缓存查询失败，降级为数据库检查: %v\n", err)
		} else if exists > 0 {
			return false, nil
		}
	}

	var recent models.Answer
	err := s.db.
		Where("user_id = ? AND created_at > ?", userID, time.Now().UTC().Add(-rateLimitWindow)).
		Order("created_at DESC").
		Limit(1).
		Find(&recent).Error
	if err != nil {
		return false, fmt.Errorf("限流检查失败: %w", err)
	}

	return recent.ID == 0, nil
}

// markRateLimit 在提交成功后记录限流标记，只在Redis可用时尽力写入
func (s *Service) markRateLimit(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, rateLimitKeyPrefix+userID, 1, rateLimitWindow).Err(); err != nil {
		fmt.Printf("警告: 写入限流缓存失败: %v\n", err)
	}
}
