package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

const captchaStoreTimeout = 2 * time.Second

type captchaAnswer struct {
	Value string `json:"value"`
}

// CaptchaStore 基于 Redis 的图片验证码答案存储
// 满足 base64Captcha.Store，多实例部署时替代进程内存储
type CaptchaStore struct {
	ttl time.Duration
}

// NewCaptchaStore 创建验证码存储，Redis 未启用时返回 nil
func NewCaptchaStore(ttl time.Duration) *CaptchaStore {
	if !Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CaptchaStore{ttl: ttl}
}

func captchaKey(id string) string {
	return "captcha:" + strings.TrimSpace(id)
}

// Set 保存答案
func (s *CaptchaStore) Set(id string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), captchaStoreTimeout)
	defer cancel()
	return SetJSON(ctx, captchaKey(id), captchaAnswer{Value: value}, s.ttl)
}

// Get 读取答案，clear 为 true 时读取后删除
func (s *CaptchaStore) Get(id string, clear bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), captchaStoreTimeout)
	defer cancel()
	if clear {
		if !Enabled() {
			return ""
		}
		val, err := redisClient.GetDel(ctx, BuildKey(captchaKey(id))).Result()
		if err != nil {
			return ""
		}
		var answer captchaAnswer
		if err := json.Unmarshal([]byte(val), &answer); err != nil {
			return ""
		}
		return answer.Value
	}
	var answer captchaAnswer
	if ok, err := GetJSON(ctx, captchaKey(id), &answer); err != nil || !ok {
		return ""
	}
	return answer.Value
}

// Verify 校验答案
func (s *CaptchaStore) Verify(id, answer string, clear bool) bool {
	stored := strings.TrimSpace(s.Get(id, clear))
	return stored != "" && stored == strings.TrimSpace(answer)
}
