package public

import "github.com/secureport/internal/provider"

// Handler 公开 JSON 接口处理器入口
// 说明：仅承载联系表单网关与浏览器脚本所需的配置、验证码接口。
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
