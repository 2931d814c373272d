package ai

import (
	"strings"
	"testing"
)

func TestParseEvaluation_Valid(t *testing.T) {
	eval, err := parseEvaluation(`{"score": 8, "comment": "意外性满分"}`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if eval.Score != 8 || eval.Comment != "意外性满分" {
		t.Fatalf("解析结果不符: %+v", eval)
	}
}

func TestParseEvaluation_StripsCodeFence(t *testing.T) {
	raw := "```json\n{\"score\": 6, \"comment\": \"还行\"}\n```"
	eval, err := parseEvaluation(raw)
	if err != nil {
		t.Fatalf("带代码围栏的输出应能解析: %v", err)
	}
	if eval.Score != 6 {
		t.Fatalf("分数不符: %d", eval.Score)
	}
}

func TestParseEvaluation_Malformed(t *testing.T) {
	cases := []string{
		"这不是JSON",
		`{"score": "高分", "comment": "类型错了"}`,
		`{"score": 0, "comment": "分数越界"}`,
		`{"score": 11, "comment": "分数越界"}`,
		`{"score": 7, "comment": "   "}`,
	}
	for _, raw := range cases {
		if _, err := parseEvaluation(raw); err == nil {
			t.Fatalf("畸形输出应解析失败: %q", raw)
		}
	}
}

func TestFallbackEvaluation(t *testing.T) {
	eval := FallbackEvaluation("接口超时")
	if eval.Score != DefaultScore {
		t.Fatalf("兜底分数应为%d，实际 %d", DefaultScore, eval.Score)
	}
	if !strings.Contains(eval.Comment, "接口超时") {
		t.Fatalf("兜底点评应包含失败原因，实际: %s", eval.Comment)
	}
}

func TestCleanTopicText(t *testing.T) {
	cases := map[string]string{
		`"如果猫会写周报"`:         "如果猫会写周报",
		"「如果猫会写周报」":          "如果猫会写周报",
		"『如果猫会写周报』":          "如果猫会写周报",
		"  如果猫会写周报  ":        "如果猫会写周报",
		"```\n如果猫会写周报\n```":   "如果猫会写周报",
		"“如果猫会写周报”": "如果猫会写周报",
	}
	for raw, want := range cases {
		if got := cleanTopicText(raw); got != want {
			t.Fatalf("cleanTopicText(%q) = %q，期望 %q", raw, got, want)
		}
	}
}
