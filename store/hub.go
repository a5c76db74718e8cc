package store

import (
	"context"
	"strings"
	"sync"
)

const subscriberBuffer = 16

type subscriber struct {
	prefix string
	ch     chan Change
}

// Hub 进程内的变更分发
// 订阅者处理过慢时丢弃最旧的变更，最新一条总能送达
type Hub struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

// NewHub 创建分发器
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe 注册订阅，ctx 结束后注销并关闭通道
func (h *Hub) Subscribe(ctx context.Context, prefix string) <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = &subscriber{prefix: prefix, ch: ch}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

// Publish 向所有前缀匹配的订阅者投递变更，不阻塞
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if !strings.HasPrefix(c.Path, s.prefix) {
			continue
		}
		select {
		case s.ch <- c:
			continue
		default:
		}
		// 缓冲已满：丢掉最旧一条再投递
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

// Len 当前订阅数
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
