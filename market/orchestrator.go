package market

import (
	"strconv"
	"strings"
	"time"

	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/blocktree/openwallet/openwallet"
	"github.com/shopspring/decimal"
)

//Mint 铸造新NFT：上传图片和元数据描述符，校验描述符可公开访问后提交mint。
//上传校验失败会向调用方抛出错误，由调用方决定是否重试表单。
func (wm *MarketManager) Mint(form MintForm) (string, error) {
	session, readBind, signerBind := wm.bindings()
	if !session.Connected || signerBind == nil {
		err := openwallet.Errorf(ErrNotConnected, "connect a wallet before minting")
		wm.Ledger.Log(LogError, "mint failed: %v", err)
		return "", err
	}

	wm.Ledger.Log(LogInfo, "uploading image to content store...")

	imageCID, err := wm.Store.UploadBlob(form.Image, form.ImageName)
	if err != nil {
		wm.Ledger.Log(LogError, "image upload failed: %v", err)
		return "", err
	}
	imageURI := ipfsgate.Scheme + imageCID
	wm.Ledger.Log(LogSuccess, "image uploaded: %s", imageURI)

	wm.Ledger.Log(LogInfo, "uploading metadata to content store...")

	rarity := form.Rarity
	if rarity == "" {
		rarity = "Common"
	}
	meta := ipfsgate.Metadata{
		Name:        form.Name,
		Description: form.Description,
		Image:       imageURI,
		ExternalURL: "",
		Attributes: []ipfsgate.Attribute{
			{TraitType: "Rarity", Value: rarity},
			{TraitType: "Creator", Value: session.Account},
			{TraitType: "Listing Price", Value: form.Price, DisplayType: "number"},
			{TraitType: "Creation Date", Value: time.Now().Unix(), DisplayType: "date"},
		},
	}

	metaCID, err := wm.Store.UploadJSON(&meta)
	if err != nil {
		wm.Ledger.Log(LogError, "metadata upload failed: %v", err)
		return "", err
	}
	tokenURI := ipfsgate.Scheme + metaCID
	wm.Ledger.Log(LogSuccess, "metadata uploaded: %s", tokenURI)

	//描述符必须已可公开访问，否则mint出来的NFT无法展示
	if err := wm.Store.CheckAvailable(metaCID); err != nil {
		wm.Ledger.Log(LogError, "metadata is not publicly available: %v", err)
		return "", openwallet.Errorf(ErrMetadataUnavailable, "metadata is not publicly available: %v", err)
	}

	wm.Ledger.Log(LogInfo, "minting NFT on ledger...")

	receipt, err := signerBind.NFT.SafeMint(session.Account, tokenURI)
	if err != nil {
		wm.Ledger.Log(LogError, "mint failed: %v", err)
		return "", err
	}

	tokenID, ok := receipt.MintedTokenID(wm.Config.NFTAddress)
	if !ok {
		//事件解析不到tokenId时退回totalSupply-1
		totalSupply, err := readBind.NFT.TotalSupply()
		if err != nil {
			wm.Log.Errorf("derive minted token id failed: %v", err)
			tokenID = "unknown"
		} else {
			tokenID = strconv.FormatInt(totalSupply-1, 10)
		}
	}

	wm.Ledger.Record(ActivityEvent{
		Type:    ActivityMint,
		TokenID: tokenID,
		Name:    form.Name,
	})
	wm.Ledger.Log(LogSuccess, "NFT '%s' minted, token id: %s", form.Name, tokenID)

	go wm.SyncOwnedItems(true)

	return tokenID, nil
}

//List 挂单。先确保市场合约取得单个或全局授权，再提交listItem
func (wm *MarketManager) List(tokenID string, price string) error {
	session, _, signerBind := wm.bindings()
	if !session.Connected || signerBind == nil {
		err := openwallet.Errorf(ErrNotConnected, "connect a wallet before listing")
		wm.Ledger.Log(LogError, "list failed: %v", err)
		return err
	}

	priceDec, err := decimal.NewFromString(price)
	if err != nil {
		wm.Ledger.Log(LogError, "invalid listing price %q: %v", price, err)
		return err
	}

	wm.Ledger.Log(LogInfo, "checking approvals for token %s...", tokenID)

	if err := wm.ensureMarketplaceApproval(session.Account, tokenID, signerBind); err != nil {
		wm.Ledger.Log(LogError, "approval failed: %v", err)
		return err
	}

	wm.Ledger.Log(LogInfo, "listing token %s for %s %s...", tokenID, price, wm.Symbol())

	_, err = signerBind.Marketplace.ListItem(tokenID, priceDec)
	if err != nil {
		wm.Ledger.Log(LogError, "list failed: %v", err)
		return err
	}

	wm.Ledger.Record(ActivityEvent{
		Type:    ActivityList,
		TokenID: tokenID,
		Price:   price,
		Seller:  session.Account,
	})
	wm.Ledger.Log(LogTx, "token %s listed for %s %s", tokenID, price, wm.Symbol())

	go wm.SyncOwnedItems(true)
	go wm.SyncListings(true)

	return nil
}

//ensureMarketplaceApproval 确保市场合约可转移该token。
//单个和全局授权都没有时先提交单个授权再提交全局授权，
//只缺单个授权时只提交单个授权。
func (wm *MarketManager) ensureMarketplaceApproval(account, tokenID string, signerBind *Bindings) error {
	marketplace := wm.Config.MarketplaceAddress

	approvedForAll, err := signerBind.NFT.IsApprovedForAll(account, marketplace)
	if err != nil {
		return err
	}
	approvedAddr, err := signerBind.NFT.GetApproved(tokenID)
	if err != nil {
		return err
	}
	tokenApproved := strings.EqualFold(approvedAddr, marketplace)

	if !approvedForAll && !tokenApproved {
		wm.Ledger.Log(LogInfo, "approving marketplace to transfer token %s...", tokenID)
		if _, err := signerBind.NFT.Approve(marketplace, tokenID); err != nil {
			return err
		}
		wm.Ledger.Log(LogSuccess, "token %s approved", tokenID)

		if _, err := signerBind.NFT.SetApprovalForAll(marketplace, true); err != nil {
			return err
		}
		wm.Ledger.Log(LogSuccess, "marketplace approved for all tokens")
		return nil
	}

	if !tokenApproved {
		wm.Ledger.Log(LogInfo, "approving marketplace to transfer token %s...", tokenID)
		if _, err := signerBind.NFT.Approve(marketplace, tokenID); err != nil {
			return err
		}
		wm.Ledger.Log(LogSuccess, "token %s approved", tokenID)
		return nil
	}

	wm.Ledger.Log(LogSuccess, "token %s already approved", tokenID)
	return nil
}

//CancelListing 取消挂单。挂单属于调用方自己，无需授权
func (wm *MarketManager) CancelListing(tokenID string) error {
	session, _, signerBind := wm.bindings()
	if !session.Connected || signerBind == nil {
		err := openwallet.Errorf(ErrNotConnected, "connect a wallet before cancelling")
		wm.Ledger.Log(LogError, "cancel failed: %v", err)
		return err
	}

	wm.Ledger.Log(LogInfo, "cancelling listing of token %s...", tokenID)

	_, err := signerBind.Marketplace.CancelListing(tokenID)
	if err != nil {
		wm.Ledger.Log(LogError, "cancel failed: %v", err)
		return err
	}

	wm.Ledger.Record(ActivityEvent{
		Type:    ActivityCancel,
		TokenID: tokenID,
		Seller:  session.Account,
	})
	wm.Ledger.Log(LogTx, "listing of token %s cancelled", tokenID)

	go wm.SyncOwnedItems(true)
	go wm.SyncListings(true)

	return nil
}

//Buy 购买挂单NFT。余额检查和挂单复核都在提交写入之前
func (wm *MarketManager) Buy(tokenID string, price string) error {
	session, readBind, signerBind := wm.bindings()
	if !session.Connected || signerBind == nil {
		err := openwallet.Errorf(ErrNotConnected, "connect a wallet before buying")
		wm.Ledger.Log(LogError, "buy failed: %v", err)
		return err
	}

	priceDec, err := decimal.NewFromString(price)
	if err != nil {
		wm.Ledger.Log(LogError, "invalid price %q: %v", price, err)
		return err
	}

	balance, err := readBind.Token.BalanceOf(session.Account)
	if err != nil {
		wm.Ledger.Log(LogError, "read token balance failed: %v", err)
		return err
	}
	if balance.Cmp(priceDec) < 0 {
		wm.Ledger.Log(LogError, "insufficient balance: have %s %s, need %s %s",
			balance.String(), wm.Symbol(), price, wm.Symbol())
		return openwallet.Errorf(ErrInsufficientBalance,
			"insufficient balance: have %s, need %s", balance.String(), price)
	}

	wm.Ledger.Log(LogInfo, "buying token %s for %s %s...", tokenID, price, wm.Symbol())

	allowance, err := signerBind.Token.Allowance(session.Account, wm.Config.MarketplaceAddress)
	if err != nil {
		wm.Ledger.Log(LogError, "read allowance failed: %v", err)
		return err
	}
	if allowance.Cmp(priceDec) < 0 {
		wm.Ledger.Log(LogInfo, "approving %s %s for the marketplace...", price, wm.Symbol())
		if _, err := signerBind.Token.Approve(wm.Config.MarketplaceAddress, priceDec); err != nil {
			wm.Ledger.Log(LogError, "token approval failed: %v", err)
			return err
		}
		wm.Ledger.Log(LogSuccess, "%s %s approved for the marketplace", price, wm.Symbol())
	}

	//购买前复核挂单，防止其他买家或卖家先行动的竞态
	listing, err := signerBind.Marketplace.IDToListing(tokenID)
	if err != nil || !listing.IsListed {
		wm.Ledger.Log(LogError, "token %s is no longer available", tokenID)
		return openwallet.Errorf(ErrListingGone, "token %s is no longer available", tokenID)
	}

	_, err = signerBind.Marketplace.BuyItem(tokenID)
	if err != nil {
		wm.Ledger.Log(LogError, "buy failed: %v", err)
		return err
	}

	wm.Ledger.Record(ActivityEvent{
		Type:    ActivityBuy,
		TokenID: tokenID,
		Price:   price,
		Buyer:   session.Account,
	})
	wm.Ledger.Log(LogTx, "token %s bought for %s %s", tokenID, price, wm.Symbol())

	wm.RefreshTokenBalance()

	go wm.SyncOwnedItems(true)
	go wm.SyncListings(true)

	return nil
}

//ListAllOwned 把当前账户所有未挂单的NFT按默认价格挂单。
//单个失败不中断，全部处理完后各触发一次同步
func (wm *MarketManager) ListAllOwned() error {
	session, readBind, signerBind := wm.bindings()
	if !session.Connected || signerBind == nil {
		err := openwallet.Errorf(ErrNotConnected, "connect a wallet before listing")
		wm.Ledger.Log(LogError, "list all failed: %v", err)
		return err
	}

	price := wm.Config.DefaultListingPrice
	priceDec, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}

	wm.Ledger.Log(LogInfo, "listing all unlisted tokens for %s %s...", price, wm.Symbol())

	balance, err := readBind.NFT.BalanceOf(session.Account)
	if err != nil {
		wm.Ledger.Log(LogError, "read NFT balance failed: %v", err)
		return err
	}

	for i := int64(0); i < balance; i++ {
		tokenID, err := readBind.NFT.TokenOfOwnerByIndex(session.Account, i)
		if err != nil {
			wm.Ledger.Log(LogError, "resolve token at index %d failed: %v", i, err)
			continue
		}

		listing, err := readBind.Marketplace.IDToListing(tokenID)
		if err == nil && listing.IsListed {
			continue
		}

		if err := wm.ensureMarketplaceApproval(session.Account, tokenID, signerBind); err != nil {
			wm.Ledger.Log(LogError, "approve token %s failed: %v", tokenID, err)
			continue
		}
		if _, err := signerBind.Marketplace.ListItem(tokenID, priceDec); err != nil {
			wm.Ledger.Log(LogError, "list token %s failed: %v", tokenID, err)
			continue
		}

		wm.Ledger.Record(ActivityEvent{
			Type:    ActivityList,
			TokenID: tokenID,
			Price:   price,
			Seller:  session.Account,
		})
		wm.Ledger.Log(LogSuccess, "token %s listed for %s %s", tokenID, price, wm.Symbol())
	}

	wm.Ledger.Log(LogSuccess, "all unlisted tokens processed")

	go wm.SyncOwnedItems(true)
	go wm.SyncListings(true)

	return nil
}
