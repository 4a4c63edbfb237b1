package market

import (
	"fmt"

	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/blocktree/openwallet/openwallet"
)

//SyncOwnedItems 重建当前账户持有的NFT集合，合并市场挂单状态。
//集合在一轮完成后整体替换，消费者不会看到半更新状态。
//已有一轮在进行时普通调用直接返回，force=true时接管并使在途一轮失效。
func (wm *MarketManager) SyncOwnedItems(force bool) error {
	session, readBind, _ := wm.bindings()
	if !session.Connected || readBind == nil {
		return openwallet.Errorf(ErrNotConnected, "owned collection sync requires an active session")
	}

	gen, ok := wm.ownedGuard.begin(force)
	if !ok {
		wm.Log.Debugf("owned collection sync already in progress")
		return nil
	}

	items, errCount, err := wm.collectOwnedItems(session.Account, readBind)

	current := wm.ownedGuard.end(gen)
	if err != nil {
		wm.Ledger.Log(LogError, "owned collection sync failed: %v", err)
		return err
	}
	if !current {
		wm.Log.Debugf("owned collection sync superseded, result dropped")
		return nil
	}

	wm.mu.Lock()
	wm.owned = items
	wm.mu.Unlock()

	successCount := len(items) - errCount
	logType := LogSuccess
	if errCount > 0 {
		logType = LogWarning
	}
	wm.Ledger.Log(logType, "owned collection synchronized. total: %d (%d ok, %d with errors)",
		len(items), successCount, errCount)

	return nil
}

func (wm *MarketManager) collectOwnedItems(account string, bind *Bindings) ([]OwnedItem, int, error) {
	balance, err := bind.NFT.BalanceOf(account)
	if err != nil {
		return nil, 0, err
	}

	items := make([]OwnedItem, 0, balance)
	errCount := 0

	for i := int64(0); i < balance; i++ {
		tokenID, err := bind.NFT.TokenOfOwnerByIndex(account, i)
		if err != nil {
			wm.Log.Errorf("resolve owned token at index %d failed: %v", i, err)
			continue
		}

		uri, err := bind.NFT.TokenURI(tokenID)
		if err != nil {
			wm.Log.Errorf("read tokenURI of %s failed: %v", tokenID, err)
			continue
		}

		if uri == "" {
			//没有元数据URI，保留占位条目
			items = append(items, OwnedItem{
				TokenID:          tokenID,
				Name:             fmt.Sprintf("NFT #%s (no metadata)", tokenID),
				Description:      "this NFT has no metadata URI",
				Price:            "0",
				ListingStatus:    "No metadata",
				HasMetadataError: true,
			})
			errCount++
			continue
		}

		meta, metaErr := wm.Resolver.Resolve(tokenID, uri)
		if metaErr != nil {
			wm.Log.Debugf("resolve metadata of %s failed: %v", tokenID, metaErr)
			errCount++
		}

		isListed := false
		price := "0"
		listing, err := bind.Marketplace.IDToListing(tokenID)
		if err != nil {
			//挂单记录读取失败按未挂单处理
			wm.Log.Debugf("read listing of %s failed: %v", tokenID, err)
		} else if listing.IsListed {
			isListed = true
			price, _ = FromBaseUnits(listing.Price)
		}

		//未挂单时用元数据里的挂单价属性做展示回退
		if !isListed {
			if attr, ok := meta.AttributeValue("Listing Price"); ok && attr != "" {
				price = attr
			}
		}

		status := "Not listed"
		if isListed {
			status = fmt.Sprintf("Listed by you for %s %s", price, wm.Symbol())
		}

		item := OwnedItem{
			TokenID:          tokenID,
			Name:             meta.Name,
			Description:      meta.Description,
			ImageURL:         ipfsgate.TranslateURI(meta.Image, wm.Config.GatewayBase),
			Price:            price,
			ListingStatus:    status,
			IsListed:         isListed,
			HasMetadataError: metaErr != nil,
			RawMetadataURI:   uri,
		}
		if metaErr != nil {
			item.ErrorMessage = metaErr.Error()
		}
		items = append(items, item)
	}

	return items, errCount, nil
}
