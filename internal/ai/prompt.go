package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// topicSystemPrompt 指示模型出一个简短、人人都能看懂的大喜利题目
const topicSystemPrompt = `你是一位大喜利出题专家。请想一个有趣、能引发多样回答的大喜利题目。
题目控制在50个字以内，使用人人都能理解的平易表达。

只返回题目本身，不需要任何解释、前言或引号。`

const topicUserPrompt = `请出一个大喜利题目。`

// evaluationSystemPrompt 构造对单条回答的评分指令
// 要求模型只以JSON形式返回，便于机器解析
func evaluationSystemPrompt(topic, answer string) string {
	return fmt.Sprintf(`你是一位幽默感十足的大喜利评审。请评价下面这条针对题目的回答。

【题目】
%s

【回答】
%s

请给回答打1到10分，评分标准只有一条：好不好笑。
点评要带着幽默感来写，回答足够有趣就大方给高分。

必须以下面的JSON格式返回：
{
  "score": [1-10的整数],
  "comment": "幽默的点评（100字以内）"
}`, topic, answer)
}

const evaluationUserPrompt = `请用JSON格式评价这条回答，只凭好笑程度判断，必须返回JSON。`

// reevaluationSystemPrompt 构造对人气回答的再评价指令
func reevaluationSystemPrompt(topic, answer string, voteCount int) string {
	return fmt.Sprintf(`你是一位幽默感十足的大喜利评审。下面这条回答已经获得了%d个人的支持，是本题的人气回答。

【题目】
%s

【人气回答】
%s

请重新给这条回答打1到10分，并深入分析它为什么能获得这么多人的支持，
从幽默感、意外性、巧思等角度点出它的过人之处。

必须以下面的JSON格式返回：
{
  "score": [1-10的整数，需要考虑人气加成],
  "comment": "剖析这条回答魅力的幽默点评（100字以内）"
}`, voteCount, topic, answer)
}

const reevaluationUserPrompt = `请用JSON格式重新评价这条人气回答，综合好笑程度和人气来判断，必须返回JSON。`

// cleanModelOutput 清理模型输出中常见的包装符号
// 包括Markdown代码围栏和花式引号
func cleanModelOutput(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}

// cleanTopicText 去掉生成题目两端多余的引号类字符
func cleanTopicText(topic string) string {
	topic = cleanModelOutput(topic)
	replacer := strings.NewReplacer(
		`"`, "",
		"「", "",
		"」", "",
		"『", "",
		"』", "",
		"“", "",
		"”", "",
	)
	return strings.TrimSpace(replacer.Replace(topic))
}

// parseEvaluation 把模型返回的文本解析成Evaluation
// 解析失败或分数越界时返回错误，由调用方降级为默认评价
func parseEvaluation(raw string) (Evaluation, error) {
	cleaned := cleanModelOutput(raw)

	var eval Evaluation
	if err := json.Unmarshal([]byte(cleaned), &eval); err != nil {
		return Evaluation{}, fmt.Errorf("无法解析评价JSON: %w", err)
	}

	if eval.Score < 1 || eval.Score > 10 {
		return Evaluation{}, fmt.Errorf("评价分数越界: %d", eval.Score)
	}
	if strings.TrimSpace(eval.Comment) == "" {
		return Evaluation{}, errors.New("评价缺少点评内容")
	}

	return eval, nil
}
