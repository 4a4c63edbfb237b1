package market

import (
	"time"

	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/astaxie/beego/config"
)

const (
	Symbol  = "MTK"
	Decimal = int32(18) //代币和挂单价格的固定小数位

	//ZeroAddress mint交易的Transfer事件的from地址
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)

type MarketConfig struct {
	//币种
	Symbol string
	//小数位
	Decimal int32
	//RPC服务地址
	ServerAPI string
	//内容网关地址
	GatewayBase string
	//内容上传服务
	PinningAPI       string
	PinningAPIKey    string
	PinningAPISecret string
	//合约地址
	TokenAddress       string
	NFTAddress         string
	MarketplaceAddress string
	//链注册参数
	ChainID        string
	ChainName      string
	CurrencyName   string
	CurrencySymbol string
	//默认挂单价格
	DefaultListingPrice string
	//元数据请求超时
	MetadataTimeout time.Duration
	//是否输出调试日志
	Debug bool
}

func NewConfig(symbol string) *MarketConfig {
	c := MarketConfig{}
	c.Symbol = symbol
	c.Decimal = Decimal
	c.ServerAPI = "http://127.0.0.1:8545"
	c.GatewayBase = "https://gateway.pinata.cloud/ipfs/"
	c.PinningAPI = "https://api.pinata.cloud"
	c.ChainID = "0x7A69"
	c.ChainName = "Hardhat Localhost"
	c.CurrencyName = "Ether"
	c.CurrencySymbol = "ETH"
	c.DefaultListingPrice = "100"
	c.MetadataTimeout = 10 * time.Second
	return &c
}

//LoadAssetsConfig 加载外部配置
func (wm *MarketManager) LoadAssetsConfig(c config.Configer) error {
	wm.Config.ServerAPI = c.String("serverAPI")
	wm.Config.GatewayBase = c.String("gatewayBase")
	wm.Config.PinningAPI = c.String("pinningAPI")
	wm.Config.PinningAPIKey = c.String("pinningAPIKey")
	wm.Config.PinningAPISecret = c.String("pinningAPISecret")
	wm.Config.TokenAddress = c.String("tokenAddress")
	wm.Config.NFTAddress = c.String("nftAddress")
	wm.Config.MarketplaceAddress = c.String("marketplaceAddress")
	if chainID := c.String("chainID"); chainID != "" {
		wm.Config.ChainID = chainID
	}
	if chainName := c.String("chainName"); chainName != "" {
		wm.Config.ChainName = chainName
	}
	if price := c.String("defaultListingPrice"); price != "" {
		wm.Config.DefaultListingPrice = price
	}
	wm.client.BaseURL = wm.Config.ServerAPI
	wm.client.Debug = wm.Config.Debug
	wm.Resolver = ipfsgate.NewResolver(wm.Config.GatewayBase, wm.Config.MetadataTimeout)
	wm.Store = ipfsgate.NewPinClient(wm.Config.PinningAPI, wm.Config.PinningAPIKey, wm.Config.PinningAPISecret, wm.Config.GatewayBase)
	return nil
}

//ChainConfig 钱包注册网络所需的链参数
func (wm *MarketManager) ChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:          wm.Config.ChainID,
		ChainName:        wm.Config.ChainName,
		CurrencyName:     wm.Config.CurrencyName,
		CurrencySymbol:   wm.Config.CurrencySymbol,
		CurrencyDecimals: wm.Config.Decimal,
		RPCURL:           wm.Config.ServerAPI,
	}
}
