/*
 * Copyright 2018 The OpenWallet Authors
 * This file is part of the OpenWallet library.
 *
 * The OpenWallet library is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * The OpenWallet library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Lesser General Public License for more details.
 */

package market

import (
	"encoding/json"
	"strings"

	"github.com/blocktree/openwallet/log"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

//Session 当前钱包会话
type Session struct {
	Connected    bool   `json:"connected"`
	Account      string `json:"account"`
	TokenBalance string `json:"tokenBalance"`
}

//OwnedItem 当前账户持有的一个NFT
type OwnedItem struct {
	TokenID          string `json:"tokenId"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ImageURL         string `json:"image"`
	Price            string `json:"price"`
	ListingStatus    string `json:"status"`
	IsListed         bool   `json:"isListed"`
	HasMetadataError bool   `json:"hasError"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	RawMetadataURI   string `json:"rawTokenURI"`
}

//ListedItem 市场上的一个挂单NFT
type ListedItem struct {
	TokenID     string `json:"tokenId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image"`
	Price       string `json:"price"`
	Seller      string `json:"seller"`
	IsListed    bool   `json:"isListed"`
}

//Listing 市场合约的挂单记录，价格为链上定点整数
type Listing struct {
	Seller   string `json:"seller"`
	Price    string `json:"price"`
	IsListed bool   `json:"isListed"`
}

func NewListing(result *gjson.Result) *Listing {
	obj := Listing{}
	if err := json.Unmarshal([]byte(result.Raw), &obj); err != nil {
		log.Debugf("decode listing failed: %v", err)
	}
	return &obj
}

//EventLog 交易回执里的一条合约事件
type EventLog struct {
	Contract string            `json:"contract"`
	Name     string            `json:"event"`
	Attrs    map[string]string `json:"attributes"`
}

//Receipt 已确认交易的回执
type Receipt struct {
	TxID    string     `json:"txid"`
	Success bool       `json:"-"`
	Logs    []EventLog `json:"logs"`
}

func NewReceipt(result *gjson.Result) *Receipt {
	obj := Receipt{}
	if err := json.Unmarshal([]byte(result.Raw), &obj); err != nil {
		log.Debugf("decode receipt failed: %v", err)
	}
	obj.TxID = result.Get("transaction.hash").String()
	obj.Success = result.Get("status").String() == "success"
	return &obj
}

//MintedTokenID 从mint回执的Transfer事件解析新tokenId。
//找不到可解析的事件时返回空值，由调用方走totalSupply回退路径。
func (r *Receipt) MintedTokenID(nftAddress string) (string, bool) {
	for _, l := range r.Logs {
		if !strings.EqualFold(l.Contract, nftAddress) {
			continue
		}
		if l.Name != "Transfer" {
			continue
		}
		if l.Attrs["from"] != ZeroAddress {
			continue
		}
		if tokenID := l.Attrs["tokenId"]; tokenID != "" {
			return tokenID, true
		}
	}
	return "", false
}

//ChainConfig 请求钱包注册的链配置
type ChainConfig struct {
	ChainID          string `json:"chainId"`
	ChainName        string `json:"chainName"`
	CurrencyName     string `json:"currencyName"`
	CurrencySymbol   string `json:"currencySymbol"`
	CurrencyDecimals int32  `json:"currencyDecimals"`
	RPCURL           string `json:"rpcUrl"`
}

//MintForm mint工作流的输入
type MintForm struct {
	Name        string
	Description string
	Image       []byte
	ImageName   string
	Rarity      string
	Price       string
}

//FromBaseUnits 定点整数转为可读小数字符串
func FromBaseUnits(raw string) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "0", err
	}
	return d.Div(decimal.New(1, Decimal)).String(), nil
}

//ToBaseUnits 可读小数字符串转为18位定点整数
func ToBaseUnits(amount string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "0", err
	}
	return d.Mul(decimal.New(1, Decimal)).Truncate(0).String(), nil
}
