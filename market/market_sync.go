package market

import (
	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/blocktree/openwallet/openwallet"
)

//SyncListings 重建全部卖家的市场挂单集合。
//并发守卫与持有集合同步互相独立。
func (wm *MarketManager) SyncListings(force bool) error {
	session, readBind, _ := wm.bindings()
	if !session.Connected || readBind == nil {
		return openwallet.Errorf(ErrNotConnected, "marketplace sync requires an active session")
	}

	gen, ok := wm.listedGuard.begin(force)
	if !ok {
		wm.Log.Debugf("marketplace sync already in progress")
		return nil
	}

	items, err := wm.collectListings(readBind)

	current := wm.listedGuard.end(gen)
	if err != nil {
		wm.Ledger.Log(LogError, "marketplace sync failed: %v", err)
		return err
	}
	if !current {
		wm.Log.Debugf("marketplace sync superseded, result dropped")
		return nil
	}

	wm.mu.Lock()
	wm.listed = items
	wm.mu.Unlock()

	wm.Ledger.Log(LogSuccess, "marketplace synchronized with %d listed items", len(items))

	return nil
}

func (wm *MarketManager) collectListings(bind *Bindings) ([]ListedItem, error) {
	tokenIDs, err := bind.Marketplace.GetListedTokenIDs()
	if err != nil {
		return nil, err
	}

	items := make([]ListedItem, 0, len(tokenIDs))

	for _, tokenID := range tokenIDs {
		listing, err := bind.Marketplace.ListedItems(tokenID)
		if err != nil {
			wm.Log.Errorf("read listing of %s failed: %v", tokenID, err)
			continue
		}
		//和刚取消的挂单竞态，静默丢弃
		if !listing.IsListed {
			wm.Log.Debugf("token %s is no longer listed", tokenID)
			continue
		}

		uri, err := bind.NFT.TokenURI(tokenID)
		if err != nil {
			wm.Log.Errorf("read tokenURI of %s failed: %v", tokenID, err)
			continue
		}

		meta, metaErr := wm.Resolver.Resolve(tokenID, uri)
		if metaErr != nil {
			wm.Log.Debugf("resolve metadata of %s failed: %v", tokenID, metaErr)
		}

		price, _ := FromBaseUnits(listing.Price)

		items = append(items, ListedItem{
			TokenID:     tokenID,
			Name:        meta.Name,
			Description: meta.Description,
			ImageURL:    ipfsgate.TranslateURI(meta.Image, wm.Config.GatewayBase),
			Price:       price,
			Seller:      listing.Seller,
			IsListed:    true,
		})
	}

	return items, nil
}
