package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"eventledger/config"
	"eventledger/ledger"
	"eventledger/models"
	"eventledger/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("记录不存在")

// DefaultHourlyRate 志愿者工时默认折算单价
var DefaultHourlyRate = decimal.RequireFromString("11.65")

// LedgerService 届次数据的业务编排
// 每个操作：读取快照 -> 纯函数计算 -> 按字段写回；写入失败原样返回，不重试也不回滚
type LedgerService struct {
	repo       *repository.Repository
	hourlyRate decimal.Decimal
	now        func() time.Time
	newID      func() string
}

// NewLedgerService 创建记账服务
func NewLedgerService(repo *repository.Repository, cfg *config.LedgerConfig) *LedgerService {
	rate := DefaultHourlyRate
	if cfg != nil && cfg.VolunteerHourlyRate != "" {
		r, err := decimal.NewFromString(cfg.VolunteerHourlyRate)
		if err != nil || r.IsNegative() {
			log.Printf("志愿者时薪配置无效 %q，使用默认值 %s", cfg.VolunteerHourlyRate, DefaultHourlyRate)
		} else {
			rate = r
		}
	}
	return &LedgerService{repo: repo, hourlyRate: rate, now: time.Now, newID: uuid.NewString}
}

// HourlyRate 志愿者默认时薪
func (s *LedgerService) HourlyRate() decimal.Decimal {
	return s.hourlyRate
}

// ListEditions 列出全部届次
func (s *LedgerService) ListEditions(ctx context.Context) ([]models.EditionMeta, error) {
	return s.repo.ListEditions(ctx)
}

// CreateEdition 新建届次
func (s *LedgerService) CreateEdition(ctx context.Context, name string) (*models.EditionMeta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: 名称不能为空", ledger.ErrInvalidInput)
	}
	return s.repo.CreateEdition(ctx, name)
}

// GetEdition 获取届次元信息
func (s *LedgerService) GetEdition(ctx context.Context, editionID string) (*models.EditionMeta, error) {
	return s.repo.GetEdition(ctx, editionID)
}

// Snapshot 读取届次完整数据
func (s *LedgerService) Snapshot(ctx context.Context, editionID string) (*models.EditionData, error) {
	return s.repo.Load(ctx, editionID)
}

// Watch 订阅届次数据
func (s *LedgerService) Watch(ctx context.Context, editionID string) (<-chan repository.Snapshot, error) {
	return s.repo.Watch(ctx, editionID)
}

// TransactionFilter 交易筛选条件，零值表示不限
type TransactionFilter struct {
	Year    int
	Type    models.TransactionType
	Status  models.TransactionStatus
	EventID string
}

func (f TransactionFilter) match(t models.Transaction) bool {
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.EventID != "" && t.EventID != f.EventID {
		return false
	}
	return true
}

// TransactionInput 新增或修改交易的参数
type TransactionInput struct {
	Date         string                   `json:"date" binding:"required"`
	Description  string                   `json:"description" binding:"required"`
	Category     string                   `json:"category" binding:"required"`
	Amount       decimal.Decimal          `json:"amount"`
	Type         models.TransactionType   `json:"type" binding:"required"`
	Status       models.TransactionStatus `json:"status"`
	BudgetLineID string                   `json:"budgetLineId"`
	EventID      string                   `json:"eventId"`
	IsVolunteer  bool                     `json:"isVolunteer"`
	Hours        *decimal.Decimal         `json:"hours"`
	HourlyRate   *decimal.Decimal         `json:"hourlyRate"`
}

// build 校验输入并生成交易；志愿工时的金额 = 工时 × 时薪
func (s *LedgerService) build(id string, in TransactionInput) (models.Transaction, error) {
	if in.Status == "" {
		in.Status = models.StatusRealized
	}
	t := models.Transaction{
		ID:           id,
		Date:         strings.TrimSpace(in.Date),
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		Amount:       in.Amount,
		Type:         in.Type,
		Status:       in.Status,
		BudgetLineID: in.BudgetLineID,
		EventID:      in.EventID,
	}
	if in.IsVolunteer {
		if in.Hours == nil || !in.Hours.IsPositive() {
			return t, fmt.Errorf("%w: 志愿工时必须大于 0", ledger.ErrInvalidInput)
		}
		rate := s.hourlyRate
		if in.HourlyRate != nil {
			rate = *in.HourlyRate
		}
		hours := *in.Hours
		t.IsVolunteer = true
		t.Hours = &hours
		t.HourlyRate = &rate
		t.Amount = hours.Mul(rate).Round(2)
	}
	if t.Date == "" || t.Description == "" || t.Category == "" {
		return t, fmt.Errorf("%w: 日期、描述和分类必填", ledger.ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
	}
	return t, nil
}

// ListTransactions 按条件列出交易，按日期倒序
func (s *LedgerService) ListTransactions(ctx context.Context, editionID string, f TransactionFilter) ([]models.Transaction, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, len(data.Transactions))
	for _, t := range data.Transactions {
		if f.match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Transaction) int { return strings.Compare(b.Date, a.Date) })
	return out, nil
}

// CreateTransaction 新增交易
func (s *LedgerService) CreateTransaction(ctx context.Context, editionID string, in TransactionInput) (*models.Transaction, error) {
	t, err := s.build(s.newID(), in)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransactions(ctx, editionID, append(data.Transactions, t)); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction 修改交易
func (s *LedgerService) UpdateTransaction(ctx context.Context, editionID, txID string, in TransactionInput) (*models.Transaction, error) {
	t, err := s.build(txID, in)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	txs, ok := replaceByID(data.Transactions, t, transactionID)
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	if err := s.repo.SaveTransactions(ctx, editionID, txs); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTransaction 删除交易，并解除引用它的银行流水
func (s *LedgerService) DeleteTransaction(ctx context.Context, editionID, txID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	txs, ok := removeByID(data.Transactions, txID, transactionID)
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	if err := s.repo.SaveTransactions(ctx, editionID, txs); err != nil {
		return err
	}

	lines := slices.Clone(data.BankLines)
	dangling := false
	for i := range lines {
		if lines[i].TransactionID == txID {
			lines[i].TransactionID = ""
			dangling = true
		}
	}
	if !dangling {
		return nil
	}
	return s.repo.SaveBankLines(ctx, editionID, lines)
}

func transactionID(t models.Transaction) string { return t.ID }

func replaceByID[T any](list []T, item T, id func(T) string) ([]T, bool) {
	key := id(item)
	i := slices.IndexFunc(list, func(x T) bool { return id(x) == key })
	if i < 0 {
		return nil, false
	}
	out := slices.Clone(list)
	out[i] = item
	return out, true
}

func removeByID[T any](list []T, key string, id func(T) string) ([]T, bool) {
	match := func(x T) bool { return id(x) == key }
	if !slices.ContainsFunc(list, match) {
		return nil, false
	}
	return slices.DeleteFunc(slices.Clone(list), match), true
}
