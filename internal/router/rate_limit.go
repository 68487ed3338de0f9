package router

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/secureport/internal/config"
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// ContactRateLimitMiddleware 按配置选择联系表单限流后端
// redis 后端在客户端不可用时退化为放行
func ContactRateLimitMiddleware(cfg config.ContactRateLimitConfig, client *redis.Client, prefix string) gin.HandlerFunc {
	rule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:contact", prefix),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
	}
	switch cfg.Backend {
	case constants.RateLimitBackendRedis:
		if client == nil {
			logger.Warnw("contact_rate_limit_redis_unavailable")
		}
		return RateLimitMiddleware(client, rule, KeyByIP)
	case constants.RateLimitBackendMemory:
		return MemoryRateLimitMiddleware(rule, KeyByIP)
	default:
		return func(c *gin.Context) { c.Next() }
	}
}

// RateLimitMiddleware Redis 频率限制中间件（固定窗口）
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := resolveRateLimitKey(c, rule, keyFunc)
		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			// 限流存储故障不应阻断联系表单
			logger.Warnw("rate_limit_redis_failed", "error", err)
			c.Next()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			c.Next()
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			c.Next()
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			abortRateLimited(c, waitSeconds)
			return
		}

		c.Next()
	}
}

// MemoryRateLimitMiddleware 进程内令牌桶限流，单实例部署使用
// 每个 key 的桶容量为 MaxRequests，按窗口均匀回填
func MemoryRateLimitMiddleware(rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newLimiterSet(rule, 10*time.Minute)
	return func(c *gin.Context) {
		key := resolveRateLimitKey(c, rule, keyFunc)
		limiter := limiters.get(key)
		if !limiter.Allow() {
			wait := limiter.Reserve()
			delay := wait.Delay()
			wait.Cancel()
			abortRateLimited(c, int(delay.Seconds())+1)
			return
		}
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu      sync.Mutex
	rule    RateLimitRule
	idle    time.Duration
	entries map[string]*limiterEntry
	sweepAt time.Time
	now     func() time.Time
}

func newLimiterSet(rule RateLimitRule, idle time.Duration) *limiterSet {
	return &limiterSet{
		rule:    rule,
		idle:    idle,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.After(s.sweepAt) {
		for k, entry := range s.entries {
			if now.Sub(entry.lastSeen) > s.idle {
				delete(s.entries, k)
			}
		}
		s.sweepAt = now.Add(s.idle)
	}

	entry, ok := s.entries[key]
	if !ok {
		every := time.Duration(s.rule.WindowSeconds) * time.Second / time.Duration(s.rule.MaxRequests)
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(every), s.rule.MaxRequests)}
		s.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func resolveRateLimitKey(c *gin.Context, rule RateLimitRule, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if rule.Prefix != "" {
		key = fmt.Sprintf("%s:%s", rule.Prefix, key)
	}
	return key
}

func abortRateLimited(c *gin.Context, waitSeconds int) {
	if waitSeconds < 1 {
		waitSeconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(waitSeconds))
	response.Abort(c, response.CodeTooManyRequests, constants.ErrMsgTooManyRequests)
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
