package market

import (
	"github.com/blocktree/openwallet/openwallet"
)

//错误码，通过 (*openwallet.Error).Code() 判定
const (
	//ErrNoWallet 外部没有注入钱包
	ErrNoWallet uint64 = 70001
	//ErrNoAccount 钱包没有授权任何账户
	ErrNoAccount uint64 = 70002
	//ErrInsufficientBalance 代币余额不足，未提交任何交易
	ErrInsufficientBalance uint64 = 70003
	//ErrListingGone 挂单在购买前已失效
	ErrListingGone uint64 = 70004
	//ErrLedgerWrite 链上写入失败或被拒绝
	ErrLedgerWrite uint64 = 70005
	//ErrMetadataUnavailable 元数据上传后无法公开访问
	ErrMetadataUnavailable uint64 = 70006
	//ErrNotConnected 会话未建立
	ErrNotConnected uint64 = 70007
)

//ErrorCode 提取错误码，非本层错误返回0
func ErrorCode(err error) uint64 {
	if owErr, ok := err.(*openwallet.Error); ok {
		return owErr.Code()
	}
	return 0
}
