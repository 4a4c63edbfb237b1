package market

import (
	"github.com/Assetsadapter/nftmarket-adapter/ipfsgate"
)

//ContentStore 内容寻址存储
type ContentStore interface {
	//UploadBlob 上传文件，返回内容地址
	UploadBlob(data []byte, name string) (string, error)
	//UploadJSON 上传JSON描述符，返回内容地址
	UploadJSON(v interface{}) (string, error)
	//CheckAvailable 校验内容已可公开访问
	CheckAvailable(cid string) error
}

//MetadataResolver 元数据解析器。
//解析失败时返回占位描述符和错误，调用方据此标记条目而不中断同步。
type MetadataResolver interface {
	Resolve(tokenID string, uri string) (*ipfsgate.Metadata, error)
}
