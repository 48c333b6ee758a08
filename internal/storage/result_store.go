// Package storage persists simulation runs in Redis.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/config"
	"github.com/palemoky/blackjack-sim/internal/sim"
)

const (
	// Redis key
	runKeyPrefix      = "run:"
	shoesKeySuffix    = ":shoes"
	leaderboardKey    = "leaderboard:ev"
	dailyLeaderboard  = "leaderboard:daily:"
	dailyLeaderboardT = 48 * time.Hour
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	RunID        string  `json:"run_id"`
	EVPerRound   float64 `json:"ev_per_round"`
	RoundsPlayed int     `json:"rounds_played"`
	Net          float64 `json:"net"`
	Shoes        int     `json:"shoes"`
}

// ResultStore 模拟结果存储
type ResultStore struct {
	client *redis.Client
}

// NewRedisClient 根据配置创建 Redis 客户端
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewResultStore 创建结果存储
func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

// Ping checks that Redis is reachable.
func (s *ResultStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func runKey(id string) string   { return runKeyPrefix + id }
func shoesKey(id string) string { return runKeyPrefix + id + shoesKeySuffix }

// dailyKey is the daily leaderboard a run started at t is ranked on.
func dailyKey(t time.Time) string { return dailyLeaderboard + t.Format("2006-01-02") }

// SaveSummary 保存汇总并更新排行榜
func (s *ResultStore) SaveSummary(ctx context.Context, sum *sim.Summary) error {
	if sum == nil || sum.RunID == "" {
		return fmt.Errorf("%w: summary without run id", apperrors.ErrInvalidRequest)
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("序列化汇总失败: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, runKey(sum.RunID), data, 0)
	// Runs that never bet have no EV to rank.
	if sum.RoundsPlayed > 0 {
		z := redis.Z{Score: sum.EVPerRound, Member: sum.RunID}
		pipe.ZAdd(ctx, leaderboardKey, z)
		daily := dailyKey(sum.StartedAt)
		pipe.ZAdd(ctx, daily, z)
		pipe.Expire(ctx, daily, dailyLeaderboardT)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// GetSummary 获取汇总
func (s *ResultStore) GetSummary(ctx context.Context, runID string) (*sim.Summary, error) {
	data, err := s.client.Get(ctx, runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrRunNotFound, runID)
		}
		return nil, err
	}

	var sum sim.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("反序列化汇总失败: %w", err)
	}
	return &sum, nil
}

// AppendShoe 追加单靴结果
func (s *ResultStore) AppendShoe(ctx context.Context, rep sim.ShoeReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("序列化单靴结果失败: %w", err)
	}
	return s.client.RPush(ctx, shoesKey(rep.RunID), data).Err()
}

// ListShoes returns shoe reports in the order they finished. stop is
// inclusive and -1 means the end of the list, as in LRANGE.
func (s *ResultStore) ListShoes(ctx context.Context, runID string, start, stop int64) ([]sim.ShoeReport, error) {
	items, err := s.client.LRange(ctx, shoesKey(runID), start, stop).Result()
	if err != nil {
		return nil, err
	}

	reports := make([]sim.ShoeReport, 0, len(items))
	for _, item := range items {
		var rep sim.ShoeReport
		if err := json.Unmarshal([]byte(item), &rep); err != nil {
			return nil, fmt.Errorf("反序列化单靴结果失败: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// DeleteRun 删除一次模拟的全部数据
func (s *ResultStore) DeleteRun(ctx context.Context, runID string) error {
	// The summary's start date locates the daily leaderboard entry.
	sum, err := s.GetSummary(ctx, runID)
	if err != nil && !errors.Is(err, apperrors.ErrRunNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, runKey(runID), shoesKey(runID))
	pipe.ZRem(ctx, leaderboardKey, runID)
	if sum != nil {
		pipe.ZRem(ctx, dailyKey(sum.StartedAt), runID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// TopRuns 获取排行榜（EV 从高到低）
func (s *ResultStore) TopRuns(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	results, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, result := range results {
		runID, ok := result.Member.(string)
		if !ok {
			continue
		}
		entry := LeaderboardEntry{Rank: i + 1, RunID: runID, EVPerRound: result.Score}
		if sum, err := s.GetSummary(ctx, runID); err == nil {
			entry.RoundsPlayed = sum.RoundsPlayed
			entry.Net = sum.Net
			entry.Shoes = sum.Shoes
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RunRank 获取排名，未上榜返回 -1
func (s *ResultStore) RunRank(ctx context.Context, runID string) (int64, error) {
	rank, err := s.client.ZRevRank(ctx, leaderboardKey, runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
