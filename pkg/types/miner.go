// Package types 定义矿工相关的领域类型
package types

import (
	"bytes"
	"math/big"
	"time"
)

// CommitmentMode 承诺（哈希前缀）构造方式
type CommitmentMode string

const (
	// CommitmentModeBlock 区块模式：keccak256(previous_hash ∥ LE8(salt) ∥ meta ∥ payload)
	CommitmentModeBlock CommitmentMode = "block"
	// CommitmentModeBus 总线模式：current_hash(32) ∥ signer_address(32)，不再哈希
	CommitmentModeBus CommitmentMode = "bus"
)

// BlockInfo 链上当前出块状态快照
//
// 一次抓取后不可修改；新的快照会使正在进行的搜索失效。
type BlockInfo struct {
	PreviousHash []byte   `json:"previous_hash"`
	Salt         uint64   `json:"salt"`
	Target       *big.Int `json:"target"`

	// Signer 仅总线模式使用（32 字节地址）
	Signer []byte `json:"signer,omitempty"`
	// Difficulty 前导零字节数，Target 为空时由它推导
	Difficulty int `json:"difficulty,omitempty"`
}

// SameCommitment 按值比较两个快照是否指向同一轮
func (b *BlockInfo) SameCommitment(other *BlockInfo) bool {
	if b == nil || other == nil {
		return b == other
	}
	return bytes.Equal(b.PreviousHash, other.PreviousHash) && b.Salt == other.Salt
}

// Clone 深拷贝
func (b *BlockInfo) Clone() *BlockInfo {
	if b == nil {
		return nil
	}
	c := &BlockInfo{
		PreviousHash: append([]byte(nil), b.PreviousHash...),
		Salt:         b.Salt,
		Signer:       append([]byte(nil), b.Signer...),
		Difficulty:   b.Difficulty,
	}
	if b.Target != nil {
		c.Target = new(big.Int).Set(b.Target)
	}
	return c
}

// Submission 提交给链的上下文
type Submission struct {
	Meta      []byte     `json:"meta"`
	Payload   []byte     `json:"payload"`
	BlockInfo *BlockInfo `json:"block_info"`
}

// SearchPhase NonceFinder 的搜索阶段
type SearchPhase int32

const (
	SearchPhaseIdle SearchPhase = iota
	SearchPhaseSearching
	SearchPhaseFound
	SearchPhaseCancelled
	SearchPhaseFaulted
)

func (p SearchPhase) String() string {
	switch p {
	case SearchPhaseIdle:
		return "idle"
	case SearchPhaseSearching:
		return "searching"
	case SearchPhaseFound:
		return "found"
	case SearchPhaseCancelled:
		return "cancelled"
	case SearchPhaseFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// MinerState 矿工控制器状态
type MinerState int32

const (
	MinerStateIdle MinerState = iota
	MinerStateActive
	MinerStateStopping
	MinerStateError
)

func (s MinerState) String() string {
	switch s {
	case MinerStateIdle:
		return "idle"
	case MinerStateActive:
		return "active"
	case MinerStateStopping:
		return "stopping"
	case MinerStateError:
		return "error"
	default:
		return "unknown"
	}
}

// RoundOutcome 一轮挖矿的结果
type RoundOutcome string

const (
	RoundOutcomeAccepted RoundOutcome = "accepted"
	RoundOutcomeStale    RoundOutcome = "stale"
)

// RoundResult 一轮挖矿的汇总
type RoundResult struct {
	RoundID   string        `json:"round_id"`
	Outcome   RoundOutcome  `json:"outcome"`
	Nonce     uint64        `json:"nonce,omitempty"`
	Attempts  int           `json:"attempts"` // 提交次数（含被拒）
	Elapsed   time.Duration `json:"elapsed"`
	BlockInfo *BlockInfo    `json:"block_info,omitempty"`
}

// SearchStats 搜索统计
type SearchStats struct {
	Rounds       uint64  `json:"rounds"`
	TotalHashes  uint64  `json:"total_hashes"`
	LastHashRate float64 `json:"last_hash_rate"`
	Phase        string  `json:"phase"`
}

// MinerStatus 控制器状态快照（供 API 使用）
type MinerStatus struct {
	IsRunning       bool           `json:"is_running"`
	State           string         `json:"state"`
	Mode            CommitmentMode `json:"mode"`
	RoundsCompleted uint64         `json:"rounds_completed"`
	StaleRounds     uint64         `json:"stale_rounds"`
	LastNonce       uint64         `json:"last_nonce"`
	LastFoundAt     time.Time      `json:"last_found_at,omitempty"`
	Search          SearchStats    `json:"search"`
}

// JournalEntry 已接受 nonce 的记录
type JournalEntry struct {
	RoundID      string    `json:"round_id"`
	Nonce        uint64    `json:"nonce"`
	PreviousHash string    `json:"previous_hash"`
	Salt         uint64    `json:"salt"`
	Target       string    `json:"target"`
	Attempts     int       `json:"attempts"`
	SolveMillis  int64     `json:"solve_ms"`
	FoundAt      time.Time `json:"found_at"`
}
