package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/SlpAus/oogiri-battle-backend/internal/platform/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// requestTimeout 是单次OpenAI请求的超时时间
const requestTimeout = 60 * time.Second

// OpenAICollaborator 是基于OpenAI聊天补全接口的Collaborator实现。
// API密钥缺失时client保持为nil，所有操作降级为安全默认值。
type OpenAICollaborator struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewOpenAICollaborator 从环境变量读取OPENAI_API_KEY并构造客户端
func NewOpenAICollaborator(cfg config.OpenAIConfig) *OpenAICollaborator {
	collaborator := &OpenAICollaborator{
		model: openai.ChatModel(cfg.Model),
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		fmt.Println("警告: 未设置有效的OPENAI_API_KEY，AI协作方将以降级模式运行。")
		return collaborator
	}

	collaborator.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)
	fmt.Println("OpenAI客户端初始化成功。")

	return collaborator
}

// GenerateTopic 请求模型生成一个新题目。
// 与评分操作不同，这里的失败需要让调用方感知：
// 延迟生成路径会记录并放弃，强制生成路径会把原因返回给前端。
func (o *OpenAICollaborator) GenerateTopic(ctx context.Context) (string, error) {
	if o.client == nil {
		return "", errors.New("未配置有效的OpenAI API密钥，无法生成题目")
	}

	content, err := o.complete(ctx, topicSystemPrompt, topicUserPrompt, 0.9, 100)
	if err != nil {
		return "", fmt.Errorf("生成题目失败: %w", err)
	}

	topic := cleanTopicText(content)
	if topic == "" {
		return "", errors.New("模型返回了空题目")
	}

	fmt.Printf("题目生成成功: %s\n", topic)
	return topic, nil
}

// EvaluateAnswer 对一条回答打分，任何失败都转化为默认评价
func (o *OpenAICollaborator) EvaluateAnswer(ctx context.Context, topic, answer string) Evaluation {
	if o.client == nil {
		return FallbackEvaluation("未配置有效的OpenAI API密钥")
	}

	content, err := o.complete(ctx, evaluationSystemPrompt(topic, answer), evaluationUserPrompt, 0.7, 150)
	if err != nil {
		fmt.Printf("回答评价调用失败: %v\n", err)
		return FallbackEvaluation(err.Error())
	}

	eval, err := parseEvaluation(content)
	if err != nil {
		fmt.Printf("回答评价结果不可解析: %v\n", err)
		return FallbackEvaluation(err.Error())
	}

	fmt.Printf("回答评价成功: 分数 %d\n", eval.Score)
	return eval
}

// ReevaluatePopularAnswer 重新评价人气回答，失败同样降级为默认评价
func (o *OpenAICollaborator) ReevaluatePopularAnswer(ctx context.Context, topic, answer string, voteCount int) Evaluation {
	if o.client == nil {
		return FallbackEvaluation("未配置有效的OpenAI API密钥")
	}

	content, err := o.complete(ctx, reevaluationSystemPrompt(topic, answer, voteCount), reevaluationUserPrompt, 0.7, 200)
	if err != nil {
		fmt.Printf("人气回答再评价调用失败: %v\n", err)
		return FallbackEvaluation(err.Error())
	}

	eval, err := parseEvaluation(content)
	if err != nil {
		fmt.Printf("人气回答再评价结果不可解析: %v\n", err)
		return FallbackEvaluation(err.Error())
	}

	fmt.Printf("人气回答再评价成功: 分数 %d\n", eval.Score)
	return eval
}

// complete 执行一次聊天补全调用并返回首个choice的文本
func (o *OpenAICollaborator) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	chatCompletion, err := o.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			}),
			Model:       openai.F(o.model),
			Temperature: openai.Float(temperature),
			MaxTokens:   openai.Int(maxTokens),
		})
	if err != nil {
		return "", err
	}

	if len(chatCompletion.Choices) == 0 || strings.TrimSpace(chatCompletion.Choices[0].Message.Content) == "" {
		return "", errors.New("模型返回了空响应")
	}

	return chatCompletion.Choices[0].Message.Content, nil
}
