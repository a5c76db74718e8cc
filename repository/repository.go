package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"eventledger/models"
	"eventledger/store"

	"github.com/google/uuid"
)

const (
	metaRoot = "events_meta"
	dataRoot = "events_data"
)

// ErrEditionNotFound 届次不存在
var ErrEditionNotFound = errors.New("活动届次不存在")

// Repository 届次数据的唯一入口
// 每个更新方法只写一个顶层字段；并发写同一字段时最后写入者生效
type Repository struct {
	store store.Store
	now   func() time.Time
}

// New 创建仓库
func New(s store.Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

func metaPath(id string) string {
	return store.Join(metaRoot, id)
}

func dataPrefix(id string) string {
	return store.Join(dataRoot, id) + "/"
}

func dataPath(id, key string) string {
	return store.Join(dataRoot, id, key)
}

// ListEditions 按创建时间倒序列出全部届次
func (r *Repository) ListEditions(ctx context.Context) ([]models.EditionMeta, error) {
	docs, err := r.store.List(ctx, metaRoot+"/")
	if err != nil {
		return nil, err
	}
	editions := make([]models.EditionMeta, 0, len(docs))
	for path, raw := range docs {
		var meta models.EditionMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, &models.DecodeError{Key: path, Err: err}
		}
		if meta.ID == "" {
			meta.ID = store.Base(path)
		}
		editions = append(editions, meta)
	}
	sort.Slice(editions, func(i, j int) bool {
		if editions[i].CreatedAt != editions[j].CreatedAt {
			return editions[i].CreatedAt > editions[j].CreatedAt
		}
		return editions[i].ID < editions[j].ID
	})
	return editions, nil
}

// GetEdition 获取届次元信息
func (r *Repository) GetEdition(ctx context.Context, id string) (*models.EditionMeta, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, ErrEditionNotFound
	}
	raw, err := r.store.Get(ctx, metaPath(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEditionNotFound
		}
		return nil, err
	}
	var meta models.EditionMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, &models.DecodeError{Key: metaPath(id), Err: err}
	}
	if meta.ID == "" {
		meta.ID = id
	}
	return &meta, nil
}

// CreateEdition 新建届次并写入默认数据（预算年份为当前年）
func (r *Repository) CreateEdition(ctx context.Context, name string) (*models.EditionMeta, error) {
	now := r.now()
	meta := &models.EditionMeta{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now.UnixMilli(),
	}
	if err := r.put(ctx, metaPath(meta.ID), meta); err != nil {
		return nil, err
	}
	if err := r.writeAll(ctx, meta.ID, models.NewEditionData(now.Year())); err != nil {
		return nil, err
	}
	return meta, nil
}

// Load 读取届次的完整快照
func (r *Repository) Load(ctx context.Context, id string) (*models.EditionData, error) {
	if _, err := r.GetEdition(ctx, id); err != nil {
		return nil, err
	}
	return r.loadData(ctx, id)
}

func (r *Repository) loadData(ctx context.Context, id string) (*models.EditionData, error) {
	prefix := dataPrefix(id)
	docs, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage, len(docs))
	for path, raw := range docs {
		fields[strings.TrimPrefix(path, prefix)] = raw
	}
	return models.DecodeEditionData(fields, r.now().Year())
}

func (r *Repository) put(ctx context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", path, err)
	}
	return r.store.Set(ctx, path, raw)
}

func (r *Repository) saveKey(ctx context.Context, id, key string, v any) error {
	return r.put(ctx, dataPath(id, key), v)
}

func (r *Repository) writeAll(ctx context.Context, id string, data *models.EditionData) error {
	for _, key := range models.Keys() {
		v, _ := data.Field(key)
		if err := r.saveKey(ctx, id, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Restore 用整份数据覆盖届次的全部字段
func (r *Repository) Restore(ctx context.Context, id string, data *models.EditionData) error {
	if _, err := r.GetEdition(ctx, id); err != nil {
		return err
	}
	return r.writeAll(ctx, id, data)
}

func (r *Repository) SaveTransactions(ctx context.Context, id string, v []models.Transaction) error {
	return r.saveKey(ctx, id, models.KeyTransactions, v)
}

func (r *Repository) SaveBankLines(ctx context.Context, id string, v []models.BankLine) error {
	return r.saveKey(ctx, id, models.KeyBankLines, v)
}

func (r *Repository) SaveBudget(ctx context.Context, id string, v []models.BudgetLine) error {
	return r.saveKey(ctx, id, models.KeyBudget, v)
}

func (r *Repository) SaveBudgetYear(ctx context.Context, id string, year int) error {
	return r.saveKey(ctx, id, models.KeyBudgetYear, year)
}

func (r *Repository) SaveSponsors(ctx context.Context, id string, v []models.Sponsor) error {
	return r.saveKey(ctx, id, models.KeySponsors, v)
}

func (r *Repository) SaveContacts(ctx context.Context, id string, v []models.Contact) error {
	return r.saveKey(ctx, id, models.KeyContacts, v)
}

func (r *Repository) SaveContributions(ctx context.Context, id string, v []models.Contribution) error {
	return r.saveKey(ctx, id, models.KeyContributions, v)
}

func (r *Repository) SaveVolunteers(ctx context.Context, id string, v []models.Volunteer) error {
	return r.saveKey(ctx, id, models.KeyVolunteers, v)
}

func (r *Repository) SaveEvents(ctx context.Context, id string, v []models.AppEvent) error {
	return r.saveKey(ctx, id, models.KeyEvents, v)
}

// SaveCategories 按收支类型写入分类列表
func (r *Repository) SaveCategories(ctx context.Context, id string, typ models.TransactionType, v []string) error {
	switch typ {
	case models.TransactionIncome:
		return r.saveKey(ctx, id, models.KeyCategoriesIncome, v)
	case models.TransactionExpense:
		return r.saveKey(ctx, id, models.KeyCategoriesExpense, v)
	}
	return fmt.Errorf("未知分类类型 %q", typ)
}

func (r *Repository) SaveLastReconciledDate(ctx context.Context, id string, date string) error {
	return r.saveKey(ctx, id, models.KeyLastReconciledDate, date)
}

func (r *Repository) SaveArchives(ctx context.Context, id string, v []models.Archive) error {
	return r.saveKey(ctx, id, models.KeyArchives, v)
}
