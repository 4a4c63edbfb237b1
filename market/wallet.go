package market

import (
	"github.com/blocktree/openwallet/openwallet"
	"github.com/tidwall/gjson"
)

//Conn 只读账本连接
type Conn interface {
	View(contract string, method string, args ...interface{}) (*gjson.Result, error)
}

//SignerConn 绑定签名账户的账本连接。
//Submit 提交交易并等待账本确认后返回回执，等待不设超时。
type SignerConn interface {
	Conn
	From() string
	Submit(contract string, method string, args ...interface{}) (*Receipt, error)
}

//WalletSession 外部签名钱包
type WalletSession interface {
	//Accounts 返回已授权账户，不弹出授权请求
	Accounts() ([]string, error)
	//RequestAccounts 请求账户授权
	RequestAccounts() ([]string, error)
	//SignerConn 返回绑定账户的签名连接
	SignerConn(account string) (SignerConn, error)
	//AddNetwork 请求钱包注册链配置
	AddNetwork(cfg ChainConfig) error
}

//WalletConn 经由节点签名账户的连接
type WalletConn struct {
	client  *Client
	account string
}

func (c *WalletConn) From() string {
	return c.account
}

func (c *WalletConn) View(contract string, method string, args ...interface{}) (*gjson.Result, error) {
	return c.client.View(contract, method, args...)
}

//Submit 提交签名交易，等待确认
func (c *WalletConn) Submit(contract string, method string, args ...interface{}) (*Receipt, error) {
	if args == nil {
		args = make([]interface{}, 0)
	}
	params := map[string]interface{}{
		"from":     c.account,
		"contract": contract,
		"method":   method,
		"args":     args,
	}
	result, err := c.client.Call("tx_submit", params)
	if err != nil {
		return nil, openwallet.Errorf(ErrLedgerWrite, "submit %s.%s failed: %v", contract, method, err)
	}
	receipt := NewReceipt(result)
	if receipt.TxID == "" {
		return nil, openwallet.Errorf(ErrLedgerWrite, "submit %s.%s failed: empty transaction hash", contract, method)
	}
	if !receipt.Success {
		return nil, openwallet.Errorf(ErrLedgerWrite, "transaction [%s] rejected by ledger", receipt.TxID)
	}
	return receipt, nil
}

//NodeWallet 由节点托管账户实现的WalletSession
type NodeWallet struct {
	client *Client
}

func NewNodeWallet(client *Client) *NodeWallet {
	return &NodeWallet{client: client}
}

func (w *NodeWallet) Accounts() ([]string, error) {
	result, err := w.client.Call("wallet_accounts", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return resultStrings(result), nil
}

func (w *NodeWallet) RequestAccounts() ([]string, error) {
	result, err := w.client.Call("wallet_requestAccounts", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return resultStrings(result), nil
}

func (w *NodeWallet) SignerConn(account string) (SignerConn, error) {
	return &WalletConn{client: w.client, account: account}, nil
}

func (w *NodeWallet) AddNetwork(cfg ChainConfig) error {
	params := map[string]interface{}{
		"chainId":   cfg.ChainID,
		"chainName": cfg.ChainName,
		"nativeCurrency": map[string]interface{}{
			"name":     cfg.CurrencyName,
			"symbol":   cfg.CurrencySymbol,
			"decimals": cfg.CurrencyDecimals,
		},
		"rpcUrls": []string{cfg.RPCURL},
	}
	_, err := w.client.Call("wallet_addChain", params)
	return err
}

func resultStrings(result *gjson.Result) []string {
	values := make([]string, 0)
	for _, v := range result.Array() {
		values = append(values, v.String())
	}
	return values
}
