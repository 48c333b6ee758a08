package protocol

import (
	"github.com/palemoky/blackjack-sim/internal/sim"
)

// --- 客户端请求 Payloads ---

// SimulatePayload 模拟请求. Zero fields fall back to the server's
// configured values.
type SimulatePayload struct {
	Shoes             int      `json:"shoes"`
	Seed              uint64   `json:"seed,string,omitempty"`
	Workers           int      `json:"workers,omitempty"`
	Decks             int      `json:"decks,omitempty"`
	Penetration       float64  `json:"penetration,omitempty"`
	CountingSystem    string   `json:"counting_system,omitempty"`
	BlackjackPayout   float64  `json:"blackjack_payout,omitempty"`
	HitSplitAces      *bool    `json:"hit_split_aces,omitempty"`
	BetAmount         float64  `json:"bet_amount,omitempty"`
	OnlyWhenFavorable *bool    `json:"only_when_favorable,omitempty"`
	Threshold         *float64 `json:"favorable_threshold,omitempty"`
	PerfectPairs      *float64 `json:"perfect_pairs,omitempty"`
	TwentyOnePlus3    *float64 `json:"twenty_one_plus_three,omitempty"`
	StartingBankroll  float64  `json:"starting_bankroll,omitempty"`
	KeepRecords       bool     `json:"keep_records,omitempty"`
	Persist           bool     `json:"persist,omitempty"` // save to Redis when available
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// StartedPayload 模拟开始
type StartedPayload struct {
	Shoes   int    `json:"shoes"`
	Workers int    `json:"workers"`
	Seed    uint64 `json:"seed,string"`
}

// ShoeResultPayload 单靴结果
type ShoeResultPayload struct {
	sim.ShoeReport
	Completed int `json:"completed"` // shoes finished so far, this one included
	Total     int `json:"total"`
}

// SummaryPayload 模拟汇总
type SummaryPayload = sim.Summary

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
