package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"equipment-lending-system/config"

	"github.com/go-resty/resty/v2"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// UpstreamError 补全服务返回了非 2xx 状态
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat upstream returned %d: %s", e.Status, e.Body)
}

var errEmptyReply = errors.New("chat upstream returned no choices")

// Proxy 无状态，历史由调用方传入
type Proxy struct {
	client *resty.Client
	cfg    config.AI
}

func NewProxy(client *resty.Client, cfg config.AI) *Proxy {
	return &Proxy{client: client, cfg: cfg}
}

// Complete 系统消息 + 历史 + 本次消息一起发送，返回助手回复
func (p *Proxy) Complete(ctx context.Context, history []Message, message string) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	if p.cfg.SystemMessage != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: p.cfg.SystemMessage})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})

	var result completionResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.cfg.ApiKey).
		SetBody(completionRequest{
			Model:       p.cfg.Model,
			Messages:    messages,
			Temperature: p.cfg.Temperature,
			MaxTokens:   p.cfg.MaxTokens,
		}).
		SetResult(&result).
		Post(p.cfg.ApiURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", &UpstreamError{Status: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", errEmptyReply
	}
	return result.Choices[0].Message.Content, nil
}

// CannedReply 按错误类型返回给用户的提示
func CannedReply(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch {
		case ue.Status == http.StatusPaymentRequired:
			return "抱歉，AI服务暂时无法使用，请联系管理员检查API配额。"
		case ue.Status == http.StatusUnauthorized:
			return "抱歉，AI服务认证失败，请联系管理员检查API密钥配置。"
		case ue.Status == http.StatusTooManyRequests:
			return "抱歉，AI服务请求过于频繁，请稍后再试。"
		case ue.Status >= http.StatusInternalServerError:
			return "抱歉，AI服务暂时不可用，请稍后再试。"
		}
	}
	return "抱歉，我现在无法回答您的问题。请稍后再试或联系管理员。"
}

// truncate 按字节截断，不切开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
