// Package rpc 基于 JSON-RPC 的链预言机
//
// 客户端调用 `<namespace>_getBlockInfo` 与 `<namespace>_submit`；Service 把任意
// chain.Oracle 暴露为同名方法，供 devnet 与测试使用。数值与字节一律使用 0x 十六进制编码。
package rpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/weisyn/metaminer/pkg/types"
)

// BlockInfoJSON 出块状态的线上格式
type BlockInfoJSON struct {
	PreviousHash hexutil.Bytes  `json:"previousHash"`
	Salt         hexutil.Uint64 `json:"salt"`
	Target       *hexutil.Big   `json:"target,omitempty"`
	Signer       hexutil.Bytes  `json:"signer,omitempty"`
	Difficulty   hexutil.Uint   `json:"difficulty,omitempty"`
}

// SubmitArgs 提交参数；PreviousHash/Salt 标识 nonce 所针对的状态
type SubmitArgs struct {
	PreviousHash hexutil.Bytes  `json:"previousHash"`
	Salt         hexutil.Uint64 `json:"salt"`
	Meta         hexutil.Bytes  `json:"meta,omitempty"`
	Payload      hexutil.Bytes  `json:"payload,omitempty"`
}

func encodeBlockInfo(info *types.BlockInfo) *BlockInfoJSON {
	out := &BlockInfoJSON{
		PreviousHash: info.PreviousHash,
		Salt:         hexutil.Uint64(info.Salt),
		Signer:       info.Signer,
		Difficulty:   hexutil.Uint(info.Difficulty),
	}
	if info.Target != nil {
		out.Target = (*hexutil.Big)(new(big.Int).Set(info.Target))
	}
	return out
}

func (b *BlockInfoJSON) toBlockInfo() *types.BlockInfo {
	info := &types.BlockInfo{
		PreviousHash: b.PreviousHash,
		Salt:         uint64(b.Salt),
		Signer:       b.Signer,
		Difficulty:   int(b.Difficulty),
	}
	if b.Target != nil {
		info.Target = new(big.Int).Set(b.Target.ToInt())
	}
	return info
}

func encodeSubmission(sub *types.Submission) SubmitArgs {
	args := SubmitArgs{Meta: sub.Meta, Payload: sub.Payload}
	if sub.BlockInfo != nil {
		args.PreviousHash = sub.BlockInfo.PreviousHash
		args.Salt = hexutil.Uint64(sub.BlockInfo.Salt)
	}
	return args
}

func (a SubmitArgs) toSubmission() *types.Submission {
	return &types.Submission{
		Meta:    a.Meta,
		Payload: a.Payload,
		BlockInfo: &types.BlockInfo{
			PreviousHash: a.PreviousHash,
			Salt:         uint64(a.Salt),
		},
	}
}
