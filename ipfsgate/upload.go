package ipfsgate

import (
	"bytes"
	"io/ioutil"

	"github.com/imroc/req"
	"github.com/juju/errors"
	"github.com/mr-tron/base58"
	"github.com/tidwall/gjson"
)

//PinClient 内容上传客户端，pinning服务风格的HTTP接口
type PinClient struct {
	BaseURL     string
	APIKey      string
	APISecret   string
	GatewayBase string
	Debug       bool
}

func NewPinClient(baseURL, apiKey, apiSecret, gatewayBase string) *PinClient {
	return &PinClient{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		APISecret:   apiSecret,
		GatewayBase: gatewayBase,
	}
}

func (c *PinClient) authHeader() req.Header {
	return req.Header{
		"pinata_api_key":        c.APIKey,
		"pinata_secret_api_key": c.APISecret,
	}
}

//UploadBlob 上传文件内容，返回内容地址
func (c *PinClient) UploadBlob(data []byte, name string) (string, error) {
	upload := req.FileUpload{
		FileName:  name,
		FieldName: "file",
		File:      ioutil.NopCloser(bytes.NewReader(data)),
	}

	r, err := req.Post(c.BaseURL+"/pinning/pinFileToIPFS", upload, c.authHeader())
	if err != nil {
		return "", errors.Annotate(err, "upload blob")
	}

	cid := gjson.GetBytes(r.Bytes(), "IpfsHash").String()
	if err := ValidateCID(cid); err != nil {
		return "", errors.Annotate(err, "upload blob")
	}
	return cid, nil
}

//UploadJSON 上传JSON描述符，返回内容地址
func (c *PinClient) UploadJSON(v interface{}) (string, error) {
	r, err := req.Post(c.BaseURL+"/pinning/pinJSONToIPFS", req.BodyJSON(v), c.authHeader())
	if err != nil {
		return "", errors.Annotate(err, "upload json")
	}

	cid := gjson.GetBytes(r.Bytes(), "IpfsHash").String()
	if err := ValidateCID(cid); err != nil {
		return "", errors.Annotate(err, "upload json")
	}
	return cid, nil
}

//CheckAvailable 校验内容已可经网关公开访问
func (c *PinClient) CheckAvailable(cid string) error {
	rq := req.New()
	rq.SetTimeout(defaultTimeout)

	r, err := rq.Get(c.GatewayBase + cid)
	if err != nil {
		return errors.Annotatef(err, "content %s is not reachable", cid)
	}
	code := r.Response().StatusCode
	if code < 200 || code > 299 {
		return errors.Errorf("content %s is not publicly available: HTTP %d", cid, code)
	}
	return nil
}

//Fetch 按内容地址取回原始字节
func (c *PinClient) Fetch(cid string) ([]byte, error) {
	rq := req.New()
	rq.SetTimeout(defaultTimeout)

	r, err := rq.Get(c.GatewayBase + cid)
	if err != nil {
		return nil, errors.Annotatef(err, "fetch content %s", cid)
	}
	code := r.Response().StatusCode
	if code < 200 || code > 299 {
		return nil, errors.Errorf("fetch content %s: HTTP %d", cid, code)
	}
	return r.Bytes(), nil
}

//ValidateCID 内容地址的基本校验，地址是base58编码的哈希
func ValidateCID(cid string) error {
	if len(cid) < 10 {
		return errors.Errorf("invalid content address %q", cid)
	}
	if _, err := base58.Decode(cid); err != nil {
		return errors.Annotatef(err, "invalid content address %q", cid)
	}
	return nil
}
