package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/ai"
	"github.com/SlpAus/oogiri-battle-backend/internal/models"
	"github.com/SlpAus/oogiri-battle-backend/internal/tasks"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	// ErrTopicNotFound 表示回答引用的题目不存在
	ErrTopicNotFound = errors.New("指定的题目不存在")
	// ErrNotFound 表示回答不存在
	ErrNotFound = errors.New("指定的回答不存在")
	// ErrRateLimited 表示同一用户提交过于频繁
	ErrRateLimited = errors.New("每分钟只能提交一次回答，请稍后再试")
)

// Service 封装了回答的全部业务逻辑
type Service struct {
	db    *gorm.DB
	ai    ai.Collaborator
	queue *tasks.Queue
	rdb   *redis.Client
}

// NewService 构造回答service。
// rdb 可以为nil，此时限流只依赖数据库检查。
func NewService(db *gorm.DB, collaborator ai.Collaborator, queue *tasks.Queue, rdb *redis.Client) *Service {
	return &Service{db: db, ai: collaborator, queue: queue, rdb: rdb}
}

// CreateAnswer 提交一条新回答。
// 题目不存在返回ErrTopicNotFound，触发限流返回ErrRateLimited。
// 成功后立即返回未评分的回答，AI评分由延迟任务异步回写。
func (s *Service) CreateAnswer(ctx context.Context, topicID uint, content, userName, userID string) (*models.Answer, error) {
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}

	allowed, err := s.checkRateLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	newAnswer := models.Answer{
		TopicID:   topicID,
		Content:   content,
		UserName:  userName,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&newAnswer).Error; err != nil {
		return nil, fmt.Errorf("保存回答失败: %w", err)
	}

	s.markRateLimit(ctx, userID)

	// 评分不阻塞创建流程，由队列worker在响应发出后执行
	answerID := newAnswer.ID
	s.queue.Submit("evaluate-answer", func(taskCtx context.Context) {
		s.evaluateAndStore(taskCtx, answerID)
	})

	return &newAnswer, nil
}

// evaluateAndStore 执行AI评分并把结果回写到回答上。
// 回答在任务执行前被删除时静默返回。
func (s *Service) evaluateAndStore(ctx context.Context, answerID uint) {
	var target models.Answer
	if err := s.db.First(&target, answerID).Error; err != nil {
		fmt.Printf("评分任务: 找不到回答 %d: %v\n", answerID, err)
		return
	}

	var topic models.Topic
	if err := s.db.First(&topic, target.TopicID).Error; err != nil {
		fmt.Printf("评分任务: 找不到回答 %d 对应的题目: %v\n", answerID, err)
		return
	}

	eval := s.ai.EvaluateAnswer(ctx, topic.Content, target.Content)

	err := s.db.Model(&target).Updates(map[string]interface{}{
		"ai_score":   eval.Score,
		"ai_comment": eval.Comment,
	}).Error
	if err != nil {
		fmt.Printf("评分任务: 回写回答 %d 的评价失败: %v\n", answerID, err)
	}
}

// ListAnswersByTopic 返回题目下的全部回答，并为每条回答实时统计票数
func (s *Service) ListAnswersByTopic(topicID uint) ([]models.Answer, error) {
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}

	var answers []models.Answer
	if err := s.db.Where("topic_id = ?", topicID).Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("查询回答列表失败: %w", err)
	}
	if len(answers) == 0 {
		return answers, nil
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.ID)
	}

	var counts []struct {
		AnswerID uint
		Count    int64
	}
	err := s.db.Model(&models.Vote{}).
		Select("answer_id, COUNT(*) AS count").
		Where("answer_id IN ?", ids).
		Group("answer_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("统计票数失败: %w", err)
	}

	countByID := make(map[uint]int64, len(counts))
	for _, row := range counts {
		countByID[row.AnswerID] = row.Count
	}
	for i := range answers {
		answers[i].VoteCount = countByID[answers[i].ID]
	}

	return answers, nil
}

// GetAnswer 返回单条回答及其实时票数
func (s *Service) GetAnswer(id uint) (*models.Answer, error) {
	var target models.Answer
	if err := s.db.First(&target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询回答失败: %w", err)
	}

	if err := s.db.Model(&models.Vote{}).Where("answer_id = ?", id).Count(&target.VoteCount).Error; err != nil {
		return nil, fmt.Errorf("统计票数失败: %w", err)
	}

	return &target, nil
}

// RequestEvaluation 同步执行一次手动AI评分并返回更新后的回答
func (s *Service) RequestEvaluation(ctx context.Context, answerID uint) (*models.Answer, error) {
	var target models.Answer
	if err := s.db.First(&target, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询回答失败: %w", err)
	}

	var topic models.Topic
	if err := s.db.First(&topic, target.TopicID).Error; err != nil {
		return nil, fmt.Errorf("查询回答对应的题目失败: %w", err)
	}

	eval := s.ai.EvaluateAnswer(ctx, topic.Content, target.Content)

	err := s.db.Model(&target).Updates(map[string]interface{}{
		"ai_score":   eval.Score,
		"ai_comment": eval.Comment,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("保存评价失败: %w", err)
	}

	target.AIScore = &eval.Score
	target.AIComment = &eval.Comment
	return &target, nil
}
