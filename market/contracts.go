package market

import (
	"github.com/blocktree/openwallet/openwallet"
	"github.com/shopspring/decimal"
)

//Bindings 三个合约的调用句柄。
//只读绑定供同步器使用，签名绑定供交易工作流使用，两者互不影响。
type Bindings struct {
	Token       *TokenContract
	NFT         *NFTContract
	Marketplace *MarketplaceContract
}

//NewReadBindings 构建只读合约绑定，不产生网络请求
func NewReadBindings(conn Conn, cfg *MarketConfig) *Bindings {
	return &Bindings{
		Token:       &TokenContract{Address: cfg.TokenAddress, conn: conn},
		NFT:         &NFTContract{Address: cfg.NFTAddress, conn: conn},
		Marketplace: &MarketplaceContract{Address: cfg.MarketplaceAddress, conn: conn},
	}
}

//NewSignerBindings 构建签名合约绑定，不产生网络请求
func NewSignerBindings(conn SignerConn, cfg *MarketConfig) *Bindings {
	return &Bindings{
		Token:       &TokenContract{Address: cfg.TokenAddress, conn: conn, signer: conn},
		NFT:         &NFTContract{Address: cfg.NFTAddress, conn: conn, signer: conn},
		Marketplace: &MarketplaceContract{Address: cfg.MarketplaceAddress, conn: conn, signer: conn},
	}
}

type TokenContract struct {
	Address string
	conn    Conn
	signer  SignerConn
}

//BalanceOf 查询代币余额，返回可读小数
func (t *TokenContract) BalanceOf(owner string) (decimal.Decimal, error) {
	result, err := t.conn.View(t.Address, "balanceOf", owner)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(result.String())
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Div(decimal.New(1, Decimal)), nil
}

//Allowance 查询授权额度，返回可读小数
func (t *TokenContract) Allowance(owner, spender string) (decimal.Decimal, error) {
	result, err := t.conn.View(t.Address, "allowance", owner, spender)
	if err != nil {
		return decimal.Zero, err
	}
	allowance, err := decimal.NewFromString(result.String())
	if err != nil {
		return decimal.Zero, err
	}
	return allowance.Div(decimal.New(1, Decimal)), nil
}

//Approve 授权额度，amount为可读小数
func (t *TokenContract) Approve(spender string, amount decimal.Decimal) (*Receipt, error) {
	if t.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "token contract has no signer bound")
	}
	raw := amount.Mul(decimal.New(1, Decimal)).Truncate(0).String()
	return t.signer.Submit(t.Address, "approve", spender, raw)
}

type NFTContract struct {
	Address string
	conn    Conn
	signer  SignerConn
}

func (n *NFTContract) BalanceOf(owner string) (int64, error) {
	result, err := n.conn.View(n.Address, "balanceOf", owner)
	if err != nil {
		return 0, err
	}
	return result.Int(), nil
}

func (n *NFTContract) TokenOfOwnerByIndex(owner string, index int64) (string, error) {
	result, err := n.conn.View(n.Address, "tokenOfOwnerByIndex", owner, index)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func (n *NFTContract) TokenURI(tokenID string) (string, error) {
	result, err := n.conn.View(n.Address, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func (n *NFTContract) GetApproved(tokenID string) (string, error) {
	result, err := n.conn.View(n.Address, "getApproved", tokenID)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

func (n *NFTContract) IsApprovedForAll(owner, operator string) (bool, error) {
	result, err := n.conn.View(n.Address, "isApprovedForAll", owner, operator)
	if err != nil {
		return false, err
	}
	return result.Bool(), nil
}

func (n *NFTContract) TotalSupply() (int64, error) {
	result, err := n.conn.View(n.Address, "totalSupply")
	if err != nil {
		return 0, err
	}
	return result.Int(), nil
}

func (n *NFTContract) Approve(spender string, tokenID string) (*Receipt, error) {
	if n.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "nft contract has no signer bound")
	}
	return n.signer.Submit(n.Address, "approve", spender, tokenID)
}

func (n *NFTContract) SetApprovalForAll(operator string, approved bool) (*Receipt, error) {
	if n.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "nft contract has no signer bound")
	}
	return n.signer.Submit(n.Address, "setApprovalForAll", operator, approved)
}

func (n *NFTContract) SafeMint(to string, tokenURI string) (*Receipt, error) {
	if n.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "nft contract has no signer bound")
	}
	return n.signer.Submit(n.Address, "safeMint", to, tokenURI)
}

type MarketplaceContract struct {
	Address string
	conn    Conn
	signer  SignerConn
}

func (m *MarketplaceContract) GetListedTokenIDs() ([]string, error) {
	result, err := m.conn.View(m.Address, "getListedTokenIds")
	if err != nil {
		return nil, err
	}
	return resultStrings(result), nil
}

//ListedItems 查询挂单记录，含卖家
func (m *MarketplaceContract) ListedItems(tokenID string) (*Listing, error) {
	result, err := m.conn.View(m.Address, "listedItems", tokenID)
	if err != nil {
		return nil, err
	}
	return NewListing(result), nil
}

//IDToListing 查询挂单状态和价格
func (m *MarketplaceContract) IDToListing(tokenID string) (*Listing, error) {
	result, err := m.conn.View(m.Address, "idToListing", tokenID)
	if err != nil {
		return nil, err
	}
	return NewListing(result), nil
}

//ListItem 挂单，price为可读小数
func (m *MarketplaceContract) ListItem(tokenID string, price decimal.Decimal) (*Receipt, error) {
	if m.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "marketplace contract has no signer bound")
	}
	raw := price.Mul(decimal.New(1, Decimal)).Truncate(0).String()
	return m.signer.Submit(m.Address, "listItem", tokenID, raw)
}

func (m *MarketplaceContract) CancelListing(tokenID string) (*Receipt, error) {
	if m.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "marketplace contract has no signer bound")
	}
	return m.signer.Submit(m.Address, "cancelListing", tokenID)
}

func (m *MarketplaceContract) BuyItem(tokenID string) (*Receipt, error) {
	if m.signer == nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "marketplace contract has no signer bound")
	}
	return m.signer.Submit(m.Address, "buyItem", tokenID)
}
