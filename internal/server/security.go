package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/blackjack-sim/internal/logger"
)

// RateLimiter 速率限制器
type RateLimiter struct {
	requests map[string]*clientRate
	mu       sync.Mutex

	maxRequestsPerSecond int
	maxRequestsPerMinute int
	banDuration          time.Duration
	cleanupInterval      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// clientRate 客户端速率记录
type clientRate struct {
	secondCount int
	minuteCount int
	lastSecond  time.Time
	lastMinute  time.Time
	bannedUntil time.Time
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests:             make(map[string]*clientRate),
		maxRequestsPerSecond: maxPerSecond,
		maxRequestsPerMinute: maxPerMinute,
		banDuration:          banDuration,
		cleanupInterval:      5 * time.Minute,
		stop:                 make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rate, exists := rl.requests[ip]
	if !exists {
		rl.requests[ip] = &clientRate{
			secondCount: 1,
			minuteCount: 1,
			lastSecond:  now,
			lastMinute:  now,
		}
		return true
	}

	if now.Before(rate.bannedUntil) {
		return false
	}
	if now.Sub(rate.lastSecond) >= time.Second {
		rate.secondCount = 0
		rate.lastSecond = now
	}
	if now.Sub(rate.lastMinute) >= time.Minute {
		rate.minuteCount = 0
		rate.lastMinute = now
	}

	rate.secondCount++
	rate.minuteCount++
	if rate.secondCount > rl.maxRequestsPerSecond || rate.minuteCount > rl.maxRequestsPerMinute {
		rate.bannedUntil = now.Add(rl.banDuration)
		logger.LogWarn("IP %s banned for %v after too many simulate requests", ip, rl.banDuration)
		return false
	}
	return true
}

// IsBanned 检查 IP 是否被封禁
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rate, exists := rl.requests[ip]
	return exists && time.Now().Before(rate.bannedUntil)
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup 清理过期记录
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, rate := range rl.requests {
				if now.Sub(rate.lastMinute) > 10*time.Minute && now.After(rate.bannedUntil) {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器，"*" 允许所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowedOrigins: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// 没有 Origin 头，可能是同源请求或本地客户端
		return true
	}
	return oc.allowedOrigins[strings.ToLower(origin)]
}

// GetClientIP 获取真实客户端 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
