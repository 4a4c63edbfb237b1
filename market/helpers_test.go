package market

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	addrToken  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	addrNFT    = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	addrMarket = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	addrAlice  = "0xA11CE00000000000000000000000000000000001"
	addrBob    = "0xB0B0000000000000000000000000000000000002"
)

type fakeListing struct {
	Seller string
	Price  string //base units
	Listed bool
}

//fakeLedger 内存账本，实现Conn，按合约地址和方法分发
type fakeLedger struct {
	mu          sync.Mutex
	balances    map[string]string //base units
	allowances  map[string]string //owner|spender -> base units
	nftOwners   map[string][]string
	tokenURIs   map[string]string
	approvals   map[string]string //tokenID -> approved address
	operatorAll map[string]bool   //owner|operator
	listings    map[string]*fakeListing
	listedIndex []string //listItem过的tokenID，取消后不移除，模拟合约的历史索引
	totalSupply int64
	submitted   []string //contract.method 顺序记录
	failView    map[string]error
	failSubmit  map[string]error
	txSeq       int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances:    make(map[string]string),
		allowances:  make(map[string]string),
		nftOwners:   make(map[string][]string),
		tokenURIs:   make(map[string]string),
		approvals:   make(map[string]string),
		operatorAll: make(map[string]bool),
		listings:    make(map[string]*fakeListing),
		failView:    make(map[string]error),
		failSubmit:  make(map[string]error),
	}
}

func (fl *fakeLedger) setBalance(account, human string) {
	d, _ := decimal.NewFromString(human)
	fl.balances[account] = d.Mul(decimal.New(1, Decimal)).Truncate(0).String()
}

func (fl *fakeLedger) mintTo(owner, uri string) string {
	tokenID := strconv.FormatInt(fl.totalSupply, 10)
	fl.totalSupply++
	fl.nftOwners[owner] = append(fl.nftOwners[owner], tokenID)
	fl.tokenURIs[tokenID] = uri
	return tokenID
}

func (fl *fakeLedger) list(tokenID, seller, humanPrice string) {
	d, _ := decimal.NewFromString(humanPrice)
	fl.listings[tokenID] = &fakeListing{
		Seller: seller,
		Price:  d.Mul(decimal.New(1, Decimal)).Truncate(0).String(),
		Listed: true,
	}
	fl.listedIndex = append(fl.listedIndex, tokenID)
}

func jsonResult(v interface{}) (*gjson.Result, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	r := gjson.ParseBytes(raw)
	return &r, nil
}

func argString(args []interface{}, i int) string {
	if i >= len(args) {
		return ""
	}
	switch v := args[i].(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func argInt(args []interface{}, i int) int64 {
	if i >= len(args) {
		return 0
	}
	switch v := args[i].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (fl *fakeLedger) View(contract string, method string, args ...interface{}) (*gjson.Result, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if err := fl.failView[method]; err != nil {
		return nil, err
	}
	if err := fl.failView[method+"#"+argString(args, 0)]; err != nil {
		return nil, err
	}

	switch {
	case contract == addrToken && method == "balanceOf":
		balance := fl.balances[argString(args, 0)]
		if balance == "" {
			balance = "0"
		}
		return jsonResult(balance)

	case contract == addrToken && method == "allowance":
		allowance := fl.allowances[argString(args, 0)+"|"+argString(args, 1)]
		if allowance == "" {
			allowance = "0"
		}
		return jsonResult(allowance)

	case contract == addrNFT && method == "balanceOf":
		return jsonResult(len(fl.nftOwners[argString(args, 0)]))

	case contract == addrNFT && method == "tokenOfOwnerByIndex":
		owned := fl.nftOwners[argString(args, 0)]
		index := argInt(args, 1)
		if index >= int64(len(owned)) {
			return nil, fmt.Errorf("index %d out of range", index)
		}
		return jsonResult(owned[index])

	case contract == addrNFT && method == "tokenURI":
		return jsonResult(fl.tokenURIs[argString(args, 0)])

	case contract == addrNFT && method == "getApproved":
		approved := fl.approvals[argString(args, 0)]
		if approved == "" {
			approved = ZeroAddress
		}
		return jsonResult(approved)

	case contract == addrNFT && method == "isApprovedForAll":
		return jsonResult(fl.operatorAll[argString(args, 0)+"|"+argString(args, 1)])

	case contract == addrNFT && method == "totalSupply":
		return jsonResult(fl.totalSupply)

	case contract == addrMarket && method == "getListedTokenIds":
		ids := make([]string, len(fl.listedIndex))
		copy(ids, fl.listedIndex)
		return jsonResult(ids)

	case contract == addrMarket && (method == "listedItems" || method == "idToListing"):
		listing := fl.listings[argString(args, 0)]
		if listing == nil {
			listing = &fakeListing{Price: "0"}
		}
		return jsonResult(map[string]interface{}{
			"seller":   listing.Seller,
			"price":    listing.Price,
			"isListed": listing.Listed,
		})
	}

	return nil, fmt.Errorf("unexpected view %s.%s", contract, method)
}

//fakeSigner 绑定账户的fakeLedger签名连接
type fakeSigner struct {
	ledger  *fakeLedger
	account string
}

func (s *fakeSigner) From() string {
	return s.account
}

func (s *fakeSigner) View(contract string, method string, args ...interface{}) (*gjson.Result, error) {
	return s.ledger.View(contract, method, args...)
}

func (s *fakeSigner) Submit(contract string, method string, args ...interface{}) (*Receipt, error) {
	fl := s.ledger
	fl.mu.Lock()
	defer fl.mu.Unlock()

	call := contract + "." + method
	if err := fl.failSubmit[method]; err != nil {
		return nil, err
	}
	if err := fl.failSubmit[method+"#"+argString(args, 0)]; err != nil {
		return nil, err
	}
	fl.submitted = append(fl.submitted, call)
	fl.txSeq++

	receipt := &Receipt{
		TxID:    fmt.Sprintf("0xtx%04d", fl.txSeq),
		Success: true,
	}

	switch {
	case contract == addrToken && method == "approve":
		fl.allowances[s.account+"|"+argString(args, 0)] = argString(args, 1)

	case contract == addrNFT && method == "approve":
		fl.approvals[argString(args, 1)] = argString(args, 0)

	case contract == addrNFT && method == "setApprovalForAll":
		fl.operatorAll[s.account+"|"+argString(args, 0)] = args[1] == true

	case contract == addrNFT && method == "safeMint":
		to := argString(args, 0)
		tokenID := strconv.FormatInt(fl.totalSupply, 10)
		fl.totalSupply++
		fl.nftOwners[to] = append(fl.nftOwners[to], tokenID)
		fl.tokenURIs[tokenID] = argString(args, 1)
		receipt.Logs = append(receipt.Logs, EventLog{
			Contract: addrNFT,
			Name:     "Transfer",
			Attrs: map[string]string{
				"from":    ZeroAddress,
				"to":      to,
				"tokenId": tokenID,
			},
		})

	case contract == addrMarket && method == "listItem":
		tokenID := argString(args, 0)
		fl.listings[tokenID] = &fakeListing{
			Seller: s.account,
			Price:  argString(args, 1),
			Listed: true,
		}
		fl.listedIndex = append(fl.listedIndex, tokenID)

	case contract == addrMarket && method == "cancelListing":
		if listing := fl.listings[argString(args, 0)]; listing != nil {
			listing.Listed = false
		}

	case contract == addrMarket && method == "buyItem":
		tokenID := argString(args, 0)
		listing := fl.listings[tokenID]
		if listing == nil || !listing.Listed {
			return nil, fmt.Errorf("token %s is not listed", tokenID)
		}
		price, _ := decimal.NewFromString(listing.Price)
		buyerBalance, _ := decimal.NewFromString(fl.balances[s.account])
		sellerBalance, _ := decimal.NewFromString(fl.balances[listing.Seller])
		fl.balances[s.account] = buyerBalance.Sub(price).String()
		fl.balances[listing.Seller] = sellerBalance.Add(price).String()

		owned := fl.nftOwners[listing.Seller]
		for i, id := range owned {
			if id == tokenID {
				fl.nftOwners[listing.Seller] = append(owned[:i:i], owned[i+1:]...)
				break
			}
		}
		fl.nftOwners[s.account] = append(fl.nftOwners[s.account], tokenID)
		listing.Listed = false

	default:
		return nil, fmt.Errorf("unexpected submit %s.%s", contract, method)
	}

	return receipt, nil
}

func (fl *fakeLedger) submittedCalls() []string {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	calls := make([]string, len(fl.submitted))
	copy(calls, fl.submitted)
	return calls
}

//fakeWallet 外部签名钱包
type fakeWallet struct {
	ledger     *fakeLedger
	authorized []string //Accounts()返回
	granted    []string //RequestAccounts()返回
	requestErr error
	networkErr error
	addedChain *ChainConfig
}

func (w *fakeWallet) Accounts() ([]string, error) {
	return w.authorized, nil
}

func (w *fakeWallet) RequestAccounts() ([]string, error) {
	if w.requestErr != nil {
		return nil, w.requestErr
	}
	return w.granted, nil
}

func (w *fakeWallet) SignerConn(account string) (SignerConn, error) {
	return &fakeSigner{ledger: w.ledger, account: account}, nil
}

func (w *fakeWallet) AddNetwork(cfg ChainConfig) error {
	if w.networkErr != nil {
		return w.networkErr
	}
	w.addedChain = &cfg
	return nil
}

//fakeResolver 按URI返回预置元数据
type fakeResolver struct {
	metas map[string]*ipfsgate.Metadata
	errs  map[string]error
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		metas: make(map[string]*ipfsgate.Metadata),
		errs:  make(map[string]error),
	}
}

func (r *fakeResolver) Resolve(tokenID string, uri string) (*ipfsgate.Metadata, error) {
	if err := r.errs[uri]; err != nil {
		return ipfsgate.Placeholder(tokenID), err
	}
	if meta, ok := r.metas[uri]; ok {
		return meta, nil
	}
	return ipfsgate.Placeholder(tokenID), fmt.Errorf("metadata %s not found", uri)
}

//fakeStore 内存内容存储
type fakeStore struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	jsons       map[string][]byte
	seq         int
	unavailable bool
	uploadErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blobs: make(map[string][]byte),
		jsons: make(map[string][]byte),
	}
}

func (s *fakeStore) UploadBlob(data []byte, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.seq++
	cid := fmt.Sprintf("QmFakeBlob%032d", s.seq)
	s.blobs[cid] = data
	return cid, nil
}

func (s *fakeStore) UploadJSON(v interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s.seq++
	cid := fmt.Sprintf("QmFakeMeta%032d", s.seq)
	s.jsons[cid] = raw
	return cid, nil
}

func (s *fakeStore) CheckAvailable(cid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return fmt.Errorf("content %s is not publicly available", cid)
	}
	if _, ok := s.blobs[cid]; ok {
		return nil
	}
	if _, ok := s.jsons[cid]; ok {
		return nil
	}
	return fmt.Errorf("content %s not found", cid)
}

//storeResolver 从fakeStore里解析上传过的描述符
type storeResolver struct {
	store *fakeStore
}

func (r *storeResolver) Resolve(tokenID string, uri string) (*ipfsgate.Metadata, error) {
	cid := strings.TrimPrefix(uri, ipfsgate.Scheme)
	r.store.mu.Lock()
	raw, ok := r.store.jsons[cid]
	r.store.mu.Unlock()
	if !ok {
		return ipfsgate.Placeholder(tokenID), fmt.Errorf("metadata %s not found", uri)
	}
	meta := ipfsgate.Metadata{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ipfsgate.Placeholder(tokenID), err
	}
	return &meta, nil
}

func newTestManager(ledger *fakeLedger) *MarketManager {
	wm := NewMarketManager()
	wm.Config.TokenAddress = addrToken
	wm.Config.NFTAddress = addrNFT
	wm.Config.MarketplaceAddress = addrMarket
	wm.readConn = ledger
	wm.Resolver = newFakeResolver()
	wm.Store = newFakeStore()
	return wm
}

//bindTestSession 直接注入会话和绑定，绕过Connect触发的异步同步
func bindTestSession(wm *MarketManager, ledger *fakeLedger, account string) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	balance := "0"
	if raw, ok := ledger.balances[account]; ok {
		balance, _ = FromBaseUnits(raw)
	}
	wm.session = Session{Connected: true, Account: account, TokenBalance: balance}
	wm.readBind = NewReadBindings(ledger, wm.Config)
	wm.signerBind = NewSignerBindings(&fakeSigner{ledger: ledger, account: account}, wm.Config)
}
