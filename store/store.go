package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound 路径下没有文档
var ErrNotFound = errors.New("文档不存在")

// Change 某个路径的值发生变化；Value 为 nil 表示已删除
type Change struct {
	Path  string
	Value []byte
}

// Deleted 是否为删除事件
func (c Change) Deleted() bool {
	return c.Value == nil
}

// Store 按路径寻址的文档存储
// 写入整值覆盖，最后写入者生效；不提供版本号或冲突检测
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	// List 返回前缀下的全部文档，key 为完整路径
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Set(ctx context.Context, path string, value []byte) error
	Delete(ctx context.Context, path string) error
	// Subscribe 订阅前缀下的变化，ctx 结束时关闭通道
	Subscribe(ctx context.Context, prefix string) (<-chan Change, error)
}

// Join 拼接路径段
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Base 返回路径的最后一段
func Base(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
