package models

import (
	"time"
)

// Topic 定义了大喜利题目的持久化模型
// 同一时刻应用层保证最多只有一条 is_active 且未过期的记录
type Topic struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	// 不设置数据库默认值，激活状态总是由应用层显式写入，
	// 避免布尔零值在插入时被默认值覆盖
	IsActive bool `gorm:"index" json:"is_active"`

	// Answers 是题目下的全部回答，删除题目时级联删除
	Answers []Answer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers,omitempty"`
}

// Answer 定义了用户对题目的回答
type Answer struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TopicID   uint      `gorm:"not null;index" json:"topic_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserName  string    `gorm:"type:varchar(100);not null" json:"user_name"`
	UserID    string    `gorm:"type:varchar(100);not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// AI评价结果，回答创建后由后台任务异步回写
	AIScore   *int    `gorm:"column:ai_score" json:"ai_score"`
	AIComment *string `gorm:"column:ai_comment;type:text" json:"ai_comment"`

	// Votes 是回答收到的全部投票，删除回答时级联删除
	Votes []Vote `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// VoteCount 不落库，读取时根据votes表实时统计
	VoteCount int64 `gorm:"-" json:"vote_count"`
}

// Vote 定义了用户对回答的一次投票
// (answer_id, user_id) 的联合唯一索引在存储层保证同一用户不能重复投票
type Vote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AnswerID  uint      `gorm:"not null;uniqueIndex:idx_votes_answer_user" json:"answer_id"`
	UserID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_votes_answer_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
