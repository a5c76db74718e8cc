package repository

import (
	"context"

	"eventledger/models"
	"eventledger/store"
)

// Snapshot 一次完整的数据快照；Err 非空时 Data 为 nil
type Snapshot struct {
	Data *models.EditionData
	Err  error
}

// Watch 订阅届次数据
// 先推送当前快照，此后每次变化都重新读取并推送整份快照；
// 消费过慢时只保留最新一份
func (r *Repository) Watch(ctx context.Context, id string) (<-chan Snapshot, error) {
	if _, err := r.GetEdition(ctx, id); err != nil {
		return nil, err
	}
	changes, err := r.store.Subscribe(ctx, dataPrefix(id))
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		r.push(ctx, id, out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				drain(changes)
				r.push(ctx, id, out)
			}
		}
	}()
	return out, nil
}

func (r *Repository) push(ctx context.Context, id string, out chan Snapshot) {
	data, err := r.loadData(ctx, id)
	if ctx.Err() != nil {
		return
	}
	snap := Snapshot{Data: data, Err: err}
	select {
	case out <- snap:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- snap
}

// drain 合并已积压的变更，只触发一次重新读取
func drain(ch <-chan store.Change) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
