package httpclient

import (
	"time"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

var Client *resty.Client

// Init 创建出站请求使用的 resty 客户端，超时取 AI.Timeout
func Init() {
	Client = New(time.Duration(config.Get().AI.Timeout) * time.Second)
}

func New(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().SetTimeout(timeout)
	if tracing.IsEnabled() {
		tracing.SetupResty(client)
	}
	return client
}
