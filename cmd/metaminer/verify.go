package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/metaminer/internal/core/infrastructure/crypto/pow"
	"github.com/weisyn/metaminer/pkg/types"
)

// verifyInput verify 子命令的参数
type verifyInput struct {
	Mode       string
	Previous   string
	Salt       uint64
	Signer     string
	Meta       string
	Payload    string
	Target     string
	Difficulty int
	Nonce      uint64
}

// verifyResult 校验结果
type verifyResult struct {
	Prefix []byte
	Hash   []byte
	Target *big.Int
	Valid  bool
}

var verifyOpts verifyInput

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "校验 nonce",
	Long: `按承诺模式重建前缀，重新计算 keccak256(prefix ∥ LE8(nonce)) 并与目标比较

示例:
  metaminer verify --prev 0xab.. --salt 7 --target 0x0fff.. --nonce 12345
  metaminer verify --mode bus --prev 0xab.. --signer 0xcd.. --difficulty 2 --nonce 99`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := verifyNonce(verifyOpts)
		if err != nil {
			return err
		}
		if err := printKV([][]string{
			{"前缀", hexutil.Encode(result.Prefix)},
			{"哈希", hexutil.Encode(result.Hash)},
			{"目标", fmt.Sprintf("%#064x", result.Target)},
		}); err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("nonce %d 不满足目标", verifyOpts.Nonce)
		}
		pterm.Success.Printfln("nonce %d 有效", verifyOpts.Nonce)
		return nil
	},
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyOpts.Mode, "mode", string(types.CommitmentModeBlock), "承诺模式: block|bus")
	f.StringVar(&verifyOpts.Previous, "prev", "", "previous_hash（总线模式为 current_hash），十六进制")
	f.Uint64Var(&verifyOpts.Salt, "salt", 0, "区块模式 salt")
	f.StringVar(&verifyOpts.Signer, "signer", "", "总线模式签名者地址，十六进制")
	f.StringVar(&verifyOpts.Meta, "meta", "", "附加元数据，十六进制")
	f.StringVar(&verifyOpts.Payload, "payload", "", "负载，十六进制")
	f.StringVar(&verifyOpts.Target, "target", "", "目标值，十六进制；为空时由 --difficulty 推导")
	f.IntVar(&verifyOpts.Difficulty, "difficulty", 0, "前导零字节数")
	f.Uint64Var(&verifyOpts.Nonce, "nonce", 0, "待校验 nonce")
	_ = verifyCmd.MarkFlagRequired("prev")
	_ = verifyCmd.MarkFlagRequired("nonce")
}

// verifyNonce 重建前缀并校验 nonce
func verifyNonce(in verifyInput) (*verifyResult, error) {
	info := &types.BlockInfo{
		PreviousHash: common.FromHex(in.Previous),
		Salt:         in.Salt,
		Signer:       common.FromHex(in.Signer),
		Difficulty:   in.Difficulty,
	}
	if in.Target != "" {
		t, ok := parseHexBig(in.Target)
		if !ok {
			return nil, types.NewInvalidInput("target", "不是合法的十六进制数")
		}
		info.Target = t
	}
	target, err := pow.ResolveTarget(info)
	if err != nil {
		return nil, err
	}
	if _, err := pow.ParseTarget(target); err != nil {
		return nil, err
	}

	prefix, err := pow.BuildPrefix(hash.NewUncachedHashService(), types.CommitmentMode(in.Mode), info,
		common.FromHex(in.Meta), common.FromHex(in.Payload))
	if err != nil {
		return nil, err
	}

	worker := pow.NewHashWorker(nil)
	return &verifyResult{
		Prefix: prefix,
		Hash:   worker.HashNonce(prefix, in.Nonce),
		Target: target,
		Valid:  worker.Verify(prefix, in.Nonce, target),
	}, nil
}
