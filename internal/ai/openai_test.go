package ai

import (
	"context"
	"testing"

	"github.com/SlpAus/oogiri-battle-backend/internal/platform/config"
)

// 未配置API密钥时，协作方必须以降级模式工作：
// 评分类操作返回安全默认值，题目生成明确报错
func TestOpenAICollaborator_WithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	collaborator := NewOpenAICollaborator(config.OpenAIConfig{Model: "gpt-3.5-turbo"})

	if _, err := collaborator.GenerateTopic(context.Background()); err == nil {
		t.Fatal("没有API密钥时生成题目应报错")
	}

	eval := collaborator.EvaluateAnswer(context.Background(), "题目", "回答")
	if eval.Score != DefaultScore {
		t.Fatalf("降级评价分数应为%d，实际 %d", DefaultScore, eval.Score)
	}
	if eval.Comment == "" {
		t.Fatal("降级评价应带有说明文字")
	}

	reeval := collaborator.ReevaluatePopularAnswer(context.Background(), "题目", "回答", 5)
	if reeval.Score != DefaultScore {
		t.Fatalf("降级再评价分数应为%d，实际 %d", DefaultScore, reeval.Score)
	}
}
