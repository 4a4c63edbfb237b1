package market

import (
	"sync"

	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/blocktree/openwallet/log"
)

type MarketManager struct {
	Config   *MarketConfig         // 节点配置
	Log      *log.OWLogger         //日志工具
	Ledger   *ActivityLedger       //活动账本
	Resolver MetadataResolver      //元数据解析器
	Store    ContentStore          //内容存储客户端
	client   *Client               //ledger json-rpc client

	mu          sync.Mutex
	session     Session
	readBind    *Bindings //只读合约绑定
	signerBind  *Bindings //签名合约绑定
	readConn    Conn      //read connection, defaults to client
	owned       []OwnedItem
	listed      []ListedItem
	ownedGuard  syncGuard
	listedGuard syncGuard
}

func NewMarketManager() *MarketManager {
	wm := MarketManager{}
	wm.Config = NewConfig(Symbol)
	wm.Log = log.NewOWLogger(Symbol)
	wm.Ledger = NewActivityLedger(wm.Log)
	wm.client = &Client{BaseURL: wm.Config.ServerAPI, Debug: false}
	wm.readConn = wm.client
	wm.Resolver = ipfsgate.NewResolver(wm.Config.GatewayBase, wm.Config.MetadataTimeout)
	wm.Store = ipfsgate.NewPinClient(wm.Config.PinningAPI, wm.Config.PinningAPIKey, wm.Config.PinningAPISecret, wm.Config.GatewayBase)
	wm.session = Session{TokenBalance: "0"}
	return &wm
}

func (wm *MarketManager) Symbol() string {
	return wm.Config.Symbol
}

func (wm *MarketManager) Decimal() int32 {
	return wm.Config.Decimal
}

//Session 返回当前会话的副本
func (wm *MarketManager) Session() Session {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.session
}

//OwnedItems 返回最近一次同步的持有NFT集合
func (wm *MarketManager) OwnedItems() []OwnedItem {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	items := make([]OwnedItem, len(wm.owned))
	copy(items, wm.owned)
	return items
}

//ListedItems 返回最近一次同步的市场挂单集合
func (wm *MarketManager) ListedItems() []ListedItem {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	items := make([]ListedItem, len(wm.listed))
	copy(items, wm.listed)
	return items
}

func (wm *MarketManager) bindings() (Session, *Bindings, *Bindings) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.session, wm.readBind, wm.signerBind
}
