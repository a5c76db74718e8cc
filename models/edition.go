package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// 一届活动数据的顶层字段，每个字段单独持久化（整字段覆盖写）
const (
	KeyTransactions       = "transactions"
	KeyBankLines          = "bankLines"
	KeyBudget             = "budget"
	KeyBudgetYear         = "budgetYear"
	KeySponsors           = "sponsors"
	KeyContacts           = "contacts"
	KeyContributions      = "contributions"
	KeyVolunteers         = "volunteers"
	KeyEvents             = "events"
	KeyCategoriesIncome   = "categoriesIncome"
	KeyCategoriesExpense  = "categoriesExpense"
	KeyLastReconciledDate = "lastReconciledDate"
	KeyArchives           = "archives"
)

// EditionMeta 一届活动（如 2026 年）的元信息
type EditionMeta struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // 毫秒时间戳
}

// Archive 某一时刻的数据快照
type Archive struct {
	ID           string      `json:"id"`
	DateArchived string      `json:"dateArchived"`
	Name         string      `json:"name"`
	Data         EditionData `json:"data"`
}

// EditionData 一届活动的全部业务数据
type EditionData struct {
	Transactions       []Transaction  `json:"transactions"`
	BankLines          []BankLine     `json:"bankLines"`
	Budget             []BudgetLine   `json:"budget"`
	BudgetYear         int            `json:"budgetYear"`
	Sponsors           []Sponsor      `json:"sponsors"`
	Contacts           []Contact      `json:"contacts"`
	Contributions      []Contribution `json:"contributions"`
	Volunteers         []Volunteer    `json:"volunteers"`
	Events             []AppEvent     `json:"events"`
	CategoriesIncome   []string       `json:"categoriesIncome"`
	CategoriesExpense  []string       `json:"categoriesExpense"`
	LastReconciledDate string         `json:"lastReconciledDate"`
	Archives           []Archive      `json:"archives,omitempty"`
}

// NewEditionData 新一届的默认数据
func NewEditionData(year int) *EditionData {
	return &EditionData{
		Transactions:      []Transaction{},
		BankLines:         []BankLine{},
		Budget:            DefaultBudgetLines(),
		BudgetYear:        year,
		Sponsors:          []Sponsor{},
		Contacts:          []Contact{},
		Contributions:     []Contribution{},
		Volunteers:        []Volunteer{},
		Events:            []AppEvent{},
		CategoriesIncome:  DefaultIncomeCategories(),
		CategoriesExpense: DefaultExpenseCategories(),
		Archives:          []Archive{},
	}
}

// Field 返回某个顶层字段的值，用于整字段写入
func (d *EditionData) Field(key string) (any, bool) {
	switch key {
	case KeyTransactions:
		return d.Transactions, true
	case KeyBankLines:
		return d.BankLines, true
	case KeyBudget:
		return d.Budget, true
	case KeyBudgetYear:
		return d.BudgetYear, true
	case KeySponsors:
		return d.Sponsors, true
	case KeyContacts:
		return d.Contacts, true
	case KeyContributions:
		return d.Contributions, true
	case KeyVolunteers:
		return d.Volunteers, true
	case KeyEvents:
		return d.Events, true
	case KeyCategoriesIncome:
		return d.CategoriesIncome, true
	case KeyCategoriesExpense:
		return d.CategoriesExpense, true
	case KeyLastReconciledDate:
		return d.LastReconciledDate, true
	case KeyArchives:
		return d.Archives, true
	}
	return nil, false
}

// DecodeError 持久化边界的数据结构错误
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("数据格式错误: %v", e.Err)
	}
	return fmt.Sprintf("字段 %s 格式错误: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrUnknownField 不认识的顶层字段
var ErrUnknownField = errors.New("未知字段")

type fieldDecoder func(d *EditionData, raw json.RawMessage) error

var fieldDecoders = map[string]fieldDecoder{
	KeyTransactions: func(d *EditionData, raw json.RawMessage) error {
		return decodeList(raw, &d.Transactions, Transaction.Validate)
	},
	KeyBankLines: func(d *EditionData, raw json.RawMessage) error {
		return decodeList(raw, &d.BankLines, BankLine.Validate)
	},
	KeyBudget: func(d *EditionData, raw json.RawMessage) error {
		return decodeList(raw, &d.Budget, BudgetLine.Validate)
	},
	KeyBudgetYear: func(d *EditionData, raw json.RawMessage) error {
		return json.Unmarshal(raw, &d.BudgetYear)
	},
	KeySponsors: func(d *EditionData, raw json.RawMessage) error {
		return decodeList(raw, &d.Sponsors, Sponsor.Validate)
	},
	KeyContacts: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[Contact](raw, &d.Contacts, nil)
	},
	KeyContributions: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[Contribution](raw, &d.Contributions, nil)
	},
	KeyVolunteers: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[Volunteer](raw, &d.Volunteers, nil)
	},
	KeyEvents: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[AppEvent](raw, &d.Events, nil)
	},
	KeyCategoriesIncome: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[string](raw, &d.CategoriesIncome, nil)
	},
	KeyCategoriesExpense: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[string](raw, &d.CategoriesExpense, nil)
	},
	KeyLastReconciledDate: func(d *EditionData, raw json.RawMessage) error {
		return json.Unmarshal(raw, &d.LastReconciledDate)
	},
	KeyArchives: func(d *EditionData, raw json.RawMessage) error {
		return decodeList[Archive](raw, &d.Archives, nil)
	},
}

// Keys 全部顶层字段名（有序）
func Keys() []string {
	keys := make([]string, 0, len(fieldDecoders))
	for k := range fieldDecoders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeList[T any](raw json.RawMessage, dst *[]T, validate func(T) error) error {
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return err
	}
	if validate != nil {
		for i, item := range list {
			if err := validate(item); err != nil {
				return fmt.Errorf("第 %d 项: %w", i, err)
			}
		}
	}
	if list == nil {
		list = []T{}
	}
	*dst = list
	return nil
}

// DecodeField 将单个字段的原始 JSON 解码进 d
func DecodeField(d *EditionData, key string, raw json.RawMessage) error {
	dec, ok := fieldDecoders[key]
	if !ok {
		return &DecodeError{Key: key, Err: ErrUnknownField}
	}
	if err := dec(d, raw); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	return nil
}

// DecodeEditionData 由逐字段文档组装出完整数据
// 缺失的字段取新一届默认值；结构不符的字段返回 *DecodeError，不做静默修正
func DecodeEditionData(fields map[string]json.RawMessage, defaultYear int) (*EditionData, error) {
	d := NewEditionData(defaultYear)
	for _, key := range sortedKeys(fields) {
		if _, known := fieldDecoders[key]; !known {
			continue
		}
		if err := DecodeField(d, key, fields[key]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DecodeBackup 解析整份 JSON 备份
func DecodeBackup(raw []byte, defaultYear int) (*EditionData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if fields == nil {
		return nil, &DecodeError{Err: errors.New("备份内容为空")}
	}
	return DecodeEditionData(fields, defaultYear)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
