package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/ai"
	"github.com/SlpAus/oogiri-battle-backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrAnswerNotFound 表示投票引用的回答不存在
	ErrAnswerNotFound = errors.New("指定的回答不存在")
	// ErrDuplicateVote 表示同一用户重复给同一回答投票
	ErrDuplicateVote = errors.New("已经给这条回答投过票了")
)

// voteThreshold 是触发人气回答再评价的票数阈值
const voteThreshold = 5

// Service 封装了投票的全部业务逻辑
type Service struct {
	db *gorm.DB
	ai ai.Collaborator
}

// NewService 构造投票service
func NewService(db *gorm.DB, collaborator ai.Collaborator) *Service {
	return &Service{db: db, ai: collaborator}
}

// CreateVote 为回答记录一票。
// 回答不存在返回ErrAnswerNotFound；同一用户重复投票返回ErrDuplicateVote，
// 除了插入前的存在性检查，(answer_id, user_id) 的唯一索引兜底并发下的重复请求。
// 票数达到阈值且该回答是本题当前得票最多的回答时，同步触发一次人气再评价；
// 之后每一票只要仍然满足条件都会再次触发。
func (s *Service) CreateVote(ctx context.Context, answerID uint, userID string) (*models.Vote, error) {
	var target models.Answer
	if err := s.db.First(&target, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("查询回答失败: %w", err)
	}

	var existing int64
	err := s.db.Model(&models.Vote{}).
		Where("answer_id = ? AND user_id = ?", answerID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("查询投票记录失败: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateVote
	}

	newVote := models.Vote{
		AnswerID:  answerID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&newVote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVote
		}
		return nil, fmt.Errorf("保存投票失败: %w", err)
	}

	voteCount, err := s.countVotes(answerID)
	if err != nil {
		return nil, err
	}

	if voteCount >= voteThreshold {
		s.reevaluateIfTopAnswer(ctx, &target, voteCount)
	}

	return &newVote, nil
}

// reevaluateIfTopAnswer 在票数过线时判定本题得票最多的回答，
// 刚被投票的回答恰好是头名时执行AI再评价并覆盖原有评价。
// 并列时取ID最小的回答，保证判定结果确定。
// 再评价失败只影响点评内容（协作方内部已兜底），不影响投票本身。
func (s *Service) reevaluateIfTopAnswer(ctx context.Context, target *models.Answer, voteCount int64) {
	var top struct {
		ID         uint
		TotalVotes int64
	}
	err := s.db.Model(&models.Answer{}).
		Select("answers.id AS id, COUNT(votes.id) AS total_votes").
		Joins("JOIN votes ON votes.answer_id = answers.id").
		Where("answers.topic_id = ?", target.TopicID).
		Group("answers.id").
		Order("total_votes DESC, answers.id ASC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		fmt.Printf("判定最高票回答失败: %v\n", err)
		return
	}
	if top.ID != target.ID {
		return
	}

	var topic models.Topic
	if err := s.db.First(&topic, target.TopicID).Error; err != nil {
		fmt.Printf("再评价: 查询题目失败: %v\n", err)
		return
	}

	eval := s.ai.ReevaluatePopularAnswer(ctx, topic.Content, target.Content, int(voteCount))

	err = s.db.Model(target).Updates(map[string]interface{}{
		"ai_score":   eval.Score,
		"ai_comment": eval.Comment,
	}).Error
	if err != nil {
		fmt.Printf("再评价: 回写评价失败: %v\n", err)
	}
}

// ListVotesByAnswer 返回回答收到的全部投票
func (s *Service) ListVotesByAnswer(answerID uint) ([]models.Vote, error) {
	if err := s.ensureAnswerExists(answerID); err != nil {
		return nil, err
	}

	var votes []models.Vote
	if err := s.db.Where("answer_id = ?", answerID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("查询投票列表失败: %w", err)
	}
	return votes, nil
}

// GetVoteCount 返回回答当前的票数
func (s *Service) GetVoteCount(answerID uint) (int64, error) {
	if err := s.ensureAnswerExists(answerID); err != nil {
		return 0, err
	}
	return s.countVotes(answerID)
}

func (s *Service) ensureAnswerExists(answerID uint) error {
	var target models.Answer
	if err := s.db.First(&target, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnswerNotFound
		}
		return fmt.Errorf("查询回答失败: %w", err)
	}
	return nil
}

func (s *Service) countVotes(answerID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Vote{}).Where("answer_id = ?", answerID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计票数失败: %w", err)
	}
	return count, nil
}
