package ai

import (
	"context"
)

// Evaluation 是AI协作方对一条回答的评价结果
type Evaluation struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Collaborator 抽象了外部AI协作方的三种操作。
// 它作为依赖注入到各个service中，测试可以用假实现替换。
//
// EvaluateAnswer和ReevaluatePopularAnswer永远不返回错误：
// 评分只是尽力而为的附注，协作方不可用时返回安全的默认评价，
// 绝不能因此让回答创建等核心流程失败。
type Collaborator interface {
	// GenerateTopic 生成一个新的大喜利题目文本
	GenerateTopic(ctx context.Context) (string, error)

	// EvaluateAnswer 对题目下的一条回答打分（1-10）并给出点评
	EvaluateAnswer(ctx context.Context, topic, answer string) Evaluation

	// ReevaluatePopularAnswer 重新评价获得大量投票的人气回答，
	// 点评需要分析它为什么受欢迎
	ReevaluatePopularAnswer(ctx context.Context, topic, answer string, voteCount int) Evaluation
}

// DefaultScore 是协作方调用失败或返回无法解析的内容时使用的兜底分数
const DefaultScore = 5

// FallbackEvaluation 构造一个带有失败原因说明的默认评价
func FallbackEvaluation(reason string) Evaluation {
	return Evaluation{
		Score:   DefaultScore,
		Comment: "无法完成AI评价: " + reason,
	}
}
