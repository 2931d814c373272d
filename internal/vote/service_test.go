package vote_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/ai"
	"github.com/SlpAus/oogiri-battle-backend/internal/models"
	"github.com/SlpAus/oogiri-battle-backend/internal/vote"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeCollaborator 记录再评价的调用情况
type fakeCollaborator struct {
	mu              sync.Mutex
	reeval          ai.Evaluation
	reevaluateCalls int
	lastVoteCount   int
}

func (f *fakeCollaborator) GenerateTopic(ctx context.Context) (string, error) {
	return "测试题目", nil
}

func (f *fakeCollaborator) EvaluateAnswer(ctx context.Context, topicText, answerText string) ai.Evaluation {
	return ai.Evaluation{Score: 5, Comment: "首评"}
}

func (f *fakeCollaborator) ReevaluatePopularAnswer(ctx context.Context, topicText, answerText string, voteCount int) ai.Evaluation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reevaluateCalls++
	f.lastVoteCount = voteCount
	return f.reeval
}

func (f *fakeCollaborator) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reevaluateCalls, f.lastVoteCount
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.Topic{}, &models.Answer{}, &models.Vote{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	return db
}

func seedTopicWithAnswer(t *testing.T, db *gorm.DB) (models.Topic, models.Answer) {
	t.Helper()
	now := time.Now().UTC()
	seededTopic := models.Topic{
		Content:   "测试题目",
		CreatedAt: now,
		ExpiresAt: now.Add(4 * time.Hour),
		IsActive:  true,
	}
	if err := db.Create(&seededTopic).Error; err != nil {
		t.Fatalf("写入测试题目失败: %v", err)
	}
	seededAnswer := seedAnswer(t, db, seededTopic.ID, "回答一", "author1")
	return seededTopic, seededAnswer
}

func seedAnswer(t *testing.T, db *gorm.DB, topicID uint, content, userID string) models.Answer {
	t.Helper()
	seeded := models.Answer{
		TopicID:   topicID,
		Content:   content,
		UserName:  "测试用户",
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&seeded).Error; err != nil {
		t.Fatalf("写入测试回答失败: %v", err)
	}
	return seeded
}

func seedVotes(t *testing.T, db *gorm.DB, answerID uint, count int, prefix string) {
	t.Helper()
	for i := 0; i < count; i++ {
		err := db.Create(&models.Vote{
			AnswerID:  answerID,
			UserID:    fmt.Sprintf("%s%d", prefix, i),
			CreatedAt: time.Now().UTC(),
		}).Error
		if err != nil {
			t.Fatalf("写入测试投票失败: %v", err)
		}
	}
}

func TestCreateVote_AnswerNotFound(t *testing.T) {
	db := newTestDB(t)
	service := vote.NewService(db, &fakeCollaborator{})

	if _, err := service.CreateVote(context.Background(), 42, "u1"); !errors.Is(err, vote.ErrAnswerNotFound) {
		t.Fatalf("期望ErrAnswerNotFound，实际: %v", err)
	}
}

func TestCreateVote_DuplicateDoesNotDoubleCount(t *testing.T) {
	db := newTestDB(t)
	_, seededAnswer := seedTopicWithAnswer(t, db)
	service := vote.NewService(db, &fakeCollaborator{})

	if _, err := service.CreateVote(context.Background(), seededAnswer.ID, "u1"); err != nil {
		t.Fatalf("首次投票应成功: %v", err)
	}
	if _, err := service.CreateVote(context.Background(), seededAnswer.ID, "u1"); !errors.Is(err, vote.ErrDuplicateVote) {
		t.Fatalf("重复投票应返回ErrDuplicateVote，实际: %v", err)
	}

	count, err := service.GetVoteCount(seededAnswer.ID)
	if err != nil {
		t.Fatalf("查询票数失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("重复投票不能重复计数，票数应为1，实际 %d", count)
	}
}

func TestVoteCountMatchesPersistedRows(t *testing.T) {
	db := newTestDB(t)
	_, seededAnswer := seedTopicWithAnswer(t, db)
	service := vote.NewService(db, &fakeCollaborator{})

	for _, voter := range []string{"u1", "u2", "u3"} {
		if _, err := service.CreateVote(context.Background(), seededAnswer.ID, voter); err != nil {
			t.Fatalf("投票失败: %v", err)
		}
	}

	count, err := service.GetVoteCount(seededAnswer.ID)
	if err != nil {
		t.Fatalf("查询票数失败: %v", err)
	}

	var rows int64
	if err := db.Model(&models.Vote{}).Where("answer_id = ?", seededAnswer.ID).Count(&rows).Error; err != nil {
		t.Fatalf("统计投票行数失败: %v", err)
	}
	if count != rows {
		t.Fatalf("票数(%d)必须等于落库的投票行数(%d)", count, rows)
	}
}

func TestCreateVote_ThresholdTriggersReevaluation(t *testing.T) {
	db := newTestDB(t)
	_, seededAnswer := seedTopicWithAnswer(t, db)
	collaborator := &fakeCollaborator{reeval: ai.Evaluation{Score: 10, Comment: "不愧是人气回答"}}
	service := vote.NewService(db, collaborator)

	// 前4票不应触发再评价
	for i := 1; i <= 4; i++ {
		if _, err := service.CreateVote(context.Background(), seededAnswer.ID, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("第%d票失败: %v", i, err)
		}
	}
	if calls, _ := collaborator.calls(); calls != 0 {
		t.Fatalf("阈值前不应触发再评价，实际触发 %d 次", calls)
	}

	// 第5票越过阈值，触发一次再评价并覆盖评价
	if _, err := service.CreateVote(context.Background(), seededAnswer.ID, "u5"); err != nil {
		t.Fatalf("第5票失败: %v", err)
	}
	calls, lastCount := collaborator.calls()
	if calls != 1 {
		t.Fatalf("第5票应恰好触发一次再评价，实际 %d 次", calls)
	}
	if lastCount != 5 {
		t.Fatalf("再评价收到的票数应为5，实际 %d", lastCount)
	}

	var scored models.Answer
	if err := db.First(&scored, seededAnswer.ID).Error; err != nil {
		t.Fatalf("重新读取回答失败: %v", err)
	}
	if scored.AIScore == nil || *scored.AIScore != 10 {
		t.Fatalf("再评价应覆盖分数为10，实际: %v", scored.AIScore)
	}

	// 第6票仍然满足条件，必须重新判定并再次触发
	if _, err := service.CreateVote(context.Background(), seededAnswer.ID, "u6"); err != nil {
		t.Fatalf("第6票失败: %v", err)
	}
	calls, lastCount = collaborator.calls()
	if calls != 2 {
		t.Fatalf("第6票应再次触发再评价，实际共 %d 次", calls)
	}
	if lastCount != 6 {
		t.Fatalf("第二次再评价收到的票数应为6，实际 %d", lastCount)
	}
}

func TestCreateVote_NoReevaluationWhenNotTopAnswer(t *testing.T) {
	db := newTestDB(t)
	seededTopic, seededAnswer := seedTopicWithAnswer(t, db)
	leader := seedAnswer(t, db, seededTopic.ID, "领先的回答", "author2")
	seedVotes(t, db, leader.ID, 6, "leader_voter")

	collaborator := &fakeCollaborator{reeval: ai.Evaluation{Score: 10, Comment: "人气点评"}}
	service := vote.NewService(db, collaborator)

	// 回答一虽然过线，但领先者票数更高，不触发再评价
	for i := 1; i <= 5; i++ {
		if _, err := service.CreateVote(context.Background(), seededAnswer.ID, fmt.Sprintf("u%d", i)); err != nil {
			t.Fatalf("第%d票失败: %v", i, err)
		}
	}
	if calls, _ := collaborator.calls(); calls != 0 {
		t.Fatalf("非最高票回答不应触发再评价，实际 %d 次", calls)
	}
}

func TestCreateVote_TieBrokenByLowestID(t *testing.T) {
	db := newTestDB(t)
	seededTopic, first := seedTopicWithAnswer(t, db)
	second := seedAnswer(t, db, seededTopic.ID, "回答二", "author2")
	seedVotes(t, db, first.ID, 5, "first_voter")
	seedVotes(t, db, second.ID, 4, "second_voter")

	collaborator := &fakeCollaborator{reeval: ai.Evaluation{Score: 10, Comment: "人气点评"}}
	service := vote.NewService(db, collaborator)

	// 回答二追平到5票，但并列时ID更小的回答一是头名，不应触发
	if _, err := service.CreateVote(context.Background(), second.ID, "tie_voter"); err != nil {
		t.Fatalf("投票失败: %v", err)
	}
	if calls, _ := collaborator.calls(); calls != 0 {
		t.Fatalf("并列头名应取ID最小者，不应为回答二触发再评价，实际 %d 次", calls)
	}

	// 回答一收到新的一票后重新领先，触发再评价
	if _, err := service.CreateVote(context.Background(), first.ID, "extra_voter"); err != nil {
		t.Fatalf("投票失败: %v", err)
	}
	if calls, _ := collaborator.calls(); calls != 1 {
		t.Fatalf("回答一应触发一次再评价，实际 %d 次", calls)
	}
}

func TestListVotesByAnswer(t *testing.T) {
	db := newTestDB(t)
	_, seededAnswer := seedTopicWithAnswer(t, db)
	service := vote.NewService(db, &fakeCollaborator{})

	for _, voter := range []string{"u1", "u2"} {
		if _, err := service.CreateVote(context.Background(), seededAnswer.ID, voter); err != nil {
			t.Fatalf("投票失败: %v", err)
		}
	}

	votes, err := service.ListVotesByAnswer(seededAnswer.ID)
	if err != nil {
		t.Fatalf("查询投票列表失败: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("期望2条投票，实际 %d 条", len(votes))
	}

	if _, err := service.ListVotesByAnswer(seededAnswer.ID + 100); !errors.Is(err, vote.ErrAnswerNotFound) {
		t.Fatalf("不存在的回答应返回ErrAnswerNotFound，实际: %v", err)
	}
	if _, err := service.GetVoteCount(seededAnswer.ID + 100); !errors.Is(err, vote.ErrAnswerNotFound) {
		t.Fatalf("不存在的回答应返回ErrAnswerNotFound，实际: %v", err)
	}
}
