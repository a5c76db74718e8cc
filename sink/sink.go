package sink

import (
	"fmt"
	"strings"

	"eventledger/models"
)

// Sink 交易镜像的写入目标
type Sink interface {
	Write([]*models.Transaction) error
}

// Parse 解析输出地址：jsonfile:/path/file.json 或 es8:http://elasticsearch:9200
func Parse(out string) (Sink, error) {
	kind, target, ok := strings.Cut(out, ":")
	if !ok || target == "" {
		return nil, fmt.Errorf("无效的输出地址 %q，应为 jsonfile:/path/to/file.json 或 es8:http://elasticsearch:9200", out)
	}
	switch kind {
	case "jsonfile":
		return NewJSONFile(target), nil
	case "es8":
		return NewElasticsearchV8(target), nil
	}
	return nil, fmt.Errorf("未知的输出类型 %q", kind)
}

// Pointers 转为指针切片
func Pointers(txs []models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, len(txs))
	for i := range txs {
		out[i] = &txs[i]
	}
	return out
}
