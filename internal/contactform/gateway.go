package contactform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/secureport/internal/models"
)

// ErrGatewayUnavailable 未配置网关
var ErrGatewayUnavailable = errors.New("contact gateway unavailable")

// Gateway 验证网关，返回 HTTP 状态码
type Gateway interface {
	Send(ctx context.Context, submission models.ContactSubmission) (int, error)
}

// GatewayFunc 函数适配
type GatewayFunc func(ctx context.Context, submission models.ContactSubmission) (int, error)

func (f GatewayFunc) Send(ctx context.Context, submission models.ContactSubmission) (int, error) {
	return f(ctx, submission)
}

// GatewayReply 网关响应体
type GatewayReply struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	RequestID string            `json:"request_id"`
	Fields    map[string]string `json:"fields"`
}

// HTTPGateway 通过 HTTP 调用 POST /api/contact
type HTTPGateway struct {
	url        string
	httpClient *http.Client
}

// NewHTTPGateway 创建 HTTP 网关客户端，timeout <= 0 时使用 10s
func NewHTTPGateway(url string, timeout time.Duration, httpClient *http.Client) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPGateway{
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
	}
}

// Send 以 JSON 提交
func (g *HTTPGateway) Send(ctx context.Context, submission models.ContactSubmission) (int, error) {
	status, _, err := g.SendWithReply(ctx, submission)
	return status, err
}

// SendWithReply 提交并返回解析后的响应体，响应体无法解析时为空值
func (g *HTTPGateway) SendWithReply(ctx context.Context, submission models.ContactSubmission) (int, GatewayReply, error) {
	var reply GatewayReply
	if g.url == "" {
		return 0, reply, ErrGatewayUnavailable
	}
	payload, err := json.Marshal(submission)
	if err != nil {
		return 0, reply, fmt.Errorf("marshal submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return 0, reply, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, reply, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&reply)
	return resp.StatusCode, reply, nil
}
