package ipfsgate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req"
	"github.com/juju/errors"
	"github.com/tidwall/gjson"
)

//Scheme 内容寻址URI前缀
const Scheme = "ipfs://"

const defaultTimeout = 10 * time.Second

//TranslateURI 把内容寻址URI转成网关可取的HTTP地址。
//非ipfs前缀的URI原样返回
func TranslateURI(uri string, gatewayBase string) string {
	if uri == "" {
		return ""
	}
	if !strings.HasPrefix(uri, Scheme) {
		return uri
	}
	path := strings.TrimPrefix(uri, Scheme)
	path = strings.TrimLeft(path, "/")
	return gatewayBase + path
}

//Metadata NFT的JSON描述符
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

type Attribute struct {
	TraitType   string      `json:"trait_type"`
	Value       interface{} `json:"value"`
	DisplayType string      `json:"display_type,omitempty"`
}

//AttributeValue 按trait名取属性值的字符串形式
func (m *Metadata) AttributeValue(traitType string) (string, bool) {
	for _, attr := range m.Attributes {
		if attr.TraitType != traitType {
			continue
		}
		switch v := attr.Value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int64:
			return strconv.FormatInt(v, 10), true
		case nil:
			return "", false
		default:
			return fmt.Sprintf("%v", v), true
		}
	}
	return "", false
}

//Placeholder 解析失败时的合成描述符
func Placeholder(tokenID string) *Metadata {
	return &Metadata{
		Name:        "NFT #" + tokenID,
		Description: "metadata load error",
		Image:       "",
	}
}

//Resolver 经由HTTP网关解析元数据描述符
type Resolver struct {
	GatewayBase string
	Timeout     time.Duration
	Debug       bool
}

func NewResolver(gatewayBase string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{GatewayBase: gatewayBase, Timeout: timeout}
}

//Resolve 拉取并校验tokenID的元数据。
//任何失败都返回占位描述符和错误，调用方可以继续处理该条目
func (r *Resolver) Resolve(tokenID string, uri string) (*Metadata, error) {
	url := TranslateURI(uri, r.GatewayBase)

	rq := req.New()
	rq.SetTimeout(r.Timeout)

	resp, err := rq.Get(url, req.Header{"Accept": "application/json"})
	if err != nil {
		return Placeholder(tokenID), errors.Annotatef(err, "fetch metadata of token %s", tokenID)
	}

	httpResp := resp.Response()
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Placeholder(tokenID), errors.Errorf("fetch metadata of token %s: HTTP %d", tokenID, httpResp.StatusCode)
	}
	contentType := httpResp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return Placeholder(tokenID), errors.Errorf("metadata of token %s is not JSON: %s", tokenID, contentType)
	}

	body := resp.Bytes()
	if !gjson.ValidBytes(body) {
		return Placeholder(tokenID), errors.Errorf("metadata of token %s is not valid JSON", tokenID)
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return Placeholder(tokenID), errors.Errorf("metadata of token %s is not a JSON object", tokenID)
	}

	meta := Metadata{}
	if err := json.Unmarshal(body, &meta); err != nil {
		return Placeholder(tokenID), errors.Annotatef(err, "decode metadata of token %s", tokenID)
	}
	if meta.Name == "" {
		meta.Name = "NFT #" + tokenID
	}
	if meta.Description == "" {
		meta.Description = "no description"
	}

	return &meta, nil
}
