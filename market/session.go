package market

import (
	"github.com/blocktree/openwallet/openwallet"
)

//Connect 连接外部钱包，建立会话。
//成功后异步触发一次持有集合同步和一次市场同步，不阻塞调用方。
func (wm *MarketManager) Connect(wallet WalletSession) error {
	if wallet == nil {
		wm.Ledger.Log(LogError, "no wallet injected")
		return openwallet.Errorf(ErrNoWallet, "no wallet injected")
	}

	wm.Ledger.Log(LogInfo, "requesting wallet connection...")

	accounts, err := wallet.RequestAccounts()
	if err != nil {
		wm.Ledger.Log(LogError, "wallet connection failed: %v", err)
		return openwallet.Errorf(ErrNoWallet, "wallet connection failed: %v", err)
	}
	if len(accounts) == 0 {
		wm.Ledger.Log(LogError, "wallet granted no accounts")
		return openwallet.Errorf(ErrNoAccount, "wallet granted no accounts")
	}

	account := accounts[0]

	signerConn, err := wallet.SignerConn(account)
	if err != nil {
		wm.Ledger.Log(LogError, "wallet signer unavailable: %v", err)
		return openwallet.Errorf(ErrNoWallet, "wallet signer unavailable: %v", err)
	}

	readBind := NewReadBindings(wm.readConn, wm.Config)
	signerBind := NewSignerBindings(signerConn, wm.Config)

	balance, err := readBind.Token.BalanceOf(account)
	if err != nil {
		wm.Ledger.Log(LogError, "read token balance failed: %v", err)
		return err
	}

	wm.mu.Lock()
	wm.session = Session{
		Connected:    true,
		Account:      account,
		TokenBalance: balance.String(),
	}
	wm.readBind = readBind
	wm.signerBind = signerBind
	wm.mu.Unlock()

	wm.Ledger.Log(LogSuccess, "wallet connected: %s", account)

	go wm.SyncOwnedItems(false)
	go wm.SyncListings(false)

	return nil
}

//ReconnectIfAuthorized 钱包已有授权账户时静默重连，不弹出授权请求
func (wm *MarketManager) ReconnectIfAuthorized(wallet WalletSession) error {
	if wallet == nil {
		return nil
	}
	if wm.Session().Connected {
		return nil
	}
	accounts, err := wallet.Accounts()
	if err != nil {
		wm.Log.Debugf("check wallet connection failed: %v", err)
		return nil
	}
	if len(accounts) == 0 {
		return nil
	}
	return wm.Connect(wallet)
}

//Disconnect 重置会话、两个条目集合和展示日志。可重复调用
func (wm *MarketManager) Disconnect() {
	wm.mu.Lock()
	wm.session = Session{TokenBalance: "0"}
	wm.readBind = nil
	wm.signerBind = nil
	wm.owned = nil
	wm.listed = nil
	wm.mu.Unlock()

	wm.Ledger.Reset()
	wm.Ledger.Log(LogInfo, "session closed, wallet disconnected")
}

//AddNetwork 请求钱包注册链配置。失败只记录日志，不影响会话
func (wm *MarketManager) AddNetwork(wallet WalletSession) error {
	if wallet == nil {
		wm.Ledger.Log(LogError, "no wallet injected")
		return openwallet.Errorf(ErrNoWallet, "no wallet injected")
	}
	err := wallet.AddNetwork(wm.ChainConfig())
	if err != nil {
		wm.Ledger.Log(LogError, "add network failed: %v", err)
		return err
	}
	wm.Ledger.Log(LogSuccess, "network %s registered in wallet", wm.Config.ChainName)
	return nil
}

//RefreshTokenBalance 重新读取当前账户的代币余额
func (wm *MarketManager) RefreshTokenBalance() (string, error) {
	session, readBind, _ := wm.bindings()
	if !session.Connected || readBind == nil {
		return "0", openwallet.Errorf(ErrNotConnected, "no active session")
	}

	balance, err := readBind.Token.BalanceOf(session.Account)
	if err != nil {
		wm.Log.Errorf("refresh token balance failed: %v", err)
		return session.TokenBalance, err
	}

	wm.mu.Lock()
	if wm.session.Connected && wm.session.Account == session.Account {
		wm.session.TokenBalance = balance.String()
	}
	wm.mu.Unlock()

	return balance.String(), nil
}
