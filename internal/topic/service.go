package topic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/ai"
	"github.com/SlpAus/oogiri-battle-backend/internal/models"
	"github.com/SlpAus/oogiri-battle-backend/internal/tasks"
	"gorm.io/gorm"
)

// topicTTL 是题目从创建到过期的固定时长
const topicTTL = 4 * time.Hour

// ErrNotFound 表示没有符合条件的题目
var ErrNotFound = errors.New("题目不存在")

// Service 封装了题目的全部业务逻辑
type Service struct {
	db    *gorm.DB
	ai    ai.Collaborator
	queue *tasks.Queue
}

// NewService 构造题目service，AI协作方和任务队列都通过依赖注入传入
func NewService(db *gorm.DB, collaborator ai.Collaborator, queue *tasks.Queue) *Service {
	return &Service{db: db, ai: collaborator, queue: queue}
}

// GetActiveTopic 返回当前激活且未过期的题目中创建最晚的一条。
// 时间一律用UTC比较，不做字符串比较。
func (s *Service) GetActiveTopic() (*models.Topic, error) {
	var topic models.Topic
	err := s.db.
		Where("is_active = ? AND expires_at > ?", true, time.Now().UTC()).
		Order("created_at DESC").
		First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询当前题目失败: %w", err)
	}
	return &topic, nil
}

// GenerateTopic 请求生成一个新题目。
// 已有激活且未过期的题目时直接返回其ID，不重复生成；
// 否则把生成工作交给延迟任务队列，响应立即返回，前端轮询GetActiveTopic观察结果。
func (s *Service) GenerateTopic() (string, error) {
	active, err := s.GetActiveTopic()
	if err == nil {
		return fmt.Sprintf("已有进行中的题目。ID: %d", active.ID), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	s.queue.Submit("generate-topic", func(ctx context.Context) {
		if _, err := s.generateAndActivate(ctx); err != nil {
			fmt.Printf("后台生成题目失败: %v\n", err)
		}
	})

	return "正在生成新题目，请稍等片刻后再查询。", nil
}

// ForceGenerateTopic 无视现有激活题目，同步生成并激活一个新题目。
// 生成或持久化失败时错误会原样返回给调用方。
func (s *Service) ForceGenerateTopic(ctx context.Context) (*models.Topic, error) {
	return s.generateAndActivate(ctx)
}

// generateAndActivate 先调用AI生成题目文本，
// 再在同一个事务中完成"全部取消激活 + 插入新激活题目"，
// 保证任何时刻最多只有一条激活且未过期的题目。
// 生成失败时不创建任何记录。
func (s *Service) generateAndActivate(ctx context.Context) (*models.Topic, error) {
	content, err := s.ai.GenerateTopic(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newTopic := models.Topic{
		Content:   content,
		CreatedAt: now,
		ExpiresAt: now.Add(topicTTL),
		IsActive:  true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Topic{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("取消激活旧题目失败: %w", err)
		}
		if err := tx.Create(&newTopic).Error; err != nil {
			return fmt.Errorf("保存新题目失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("新题目已保存。ID: %d\n", newTopic.ID)
	return &newTopic, nil
}

// ListTopics 按创建时间倒序分页返回题目列表
func (s *Service) ListTopics(limit, offset int) ([]models.Topic, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var topics []models.Topic
	err := s.db.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("查询题目列表失败: %w", err)
	}
	return topics, nil
}

// GetTopicDetail 返回题目及其全部回答
func (s *Service) GetTopicDetail(id uint) (*models.Topic, error) {
	var topic models.Topic
	err := s.db.Preload("Answers").First(&topic, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询题目详情失败: %w", err)
	}
	return &topic, nil
}
