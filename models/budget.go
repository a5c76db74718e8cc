package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetSection 预算分区
type BudgetSection string

const (
	SectionIncome  BudgetSection = "income"
	SectionExpense BudgetSection = "expense"
	SectionInKind  BudgetSection = "in_kind" // 实物捐赠/志愿服务折算
)

// Sections 按展示顺序返回全部分区
func Sections() []BudgetSection {
	return []BudgetSection{SectionIncome, SectionExpense, SectionInKind}
}

// Valid 是否为合法分区
func (s BudgetSection) Valid() bool {
	return s == SectionIncome || s == SectionExpense || s == SectionInKind
}

// BudgetLine 预算行
// 当年金额始终由已入账收支推导，不持久化
type BudgetLine struct {
	ID              string          `json:"id"`
	Section         BudgetSection   `json:"section"`
	Category        string          `json:"category"`
	Label           string          `json:"label"`
	PriorYearAmount decimal.Decimal `json:"priorYearAmount"` // 手工录入的上年金额，作为兜底
}

// Validate 校验分区
func (l BudgetLine) Validate() error {
	if !l.Section.Valid() {
		return fmt.Errorf("budget line %s: 未知分区 %q", l.ID, l.Section)
	}
	return nil
}

// SameSlot 分区、类别、名称均相同（跨年份匹配预算行时 id 不稳定）
func (l BudgetLine) SameSlot(other BudgetLine) bool {
	return l.Section == other.Section && l.Category == other.Category && l.Label == other.Label
}

// DefaultBudgetLines 新届默认预算行
func DefaultBudgetLines() []BudgetLine {
	line := func(id string, s BudgetSection, cat, label string) BudgetLine {
		return BudgetLine{ID: id, Section: s, Category: cat, Label: label, PriorYearAmount: decimal.Zero}
	}
	return []BudgetLine{
		line("inc1", SectionIncome, "Inscriptions", "Inscriptions Participants"),
		line("inc2", SectionIncome, "Aides Publiques", "Subventions Mairie"),
		line("inc3", SectionIncome, "Aides Publiques", "Subventions Département"),
		line("inc4", SectionIncome, "Partenaires", "Sponsors Privés"),
		line("inc5", SectionIncome, "Ventes", "Buvette & Restauration"),

		line("exp1", SectionExpense, "Logistique", "Location Matériel"),
		line("exp2", SectionExpense, "Logistique", "Ravitaillement"),
		line("exp3", SectionExpense, "Animation", "Récompenses & Trophées"),
		line("exp4", SectionExpense, "Sécurité", "Secouristes"),
		line("exp5", SectionExpense, "Communication", "Flyers & Affiches"),

		line("val1", SectionInKind, "Bénévolat", "Heures Bénévoles"),
		line("val2", SectionInKind, "Matériel", "Prêt de Matériel"),
		line("val3", SectionInKind, "Locaux", "Mise à dispo Salles"),
	}
}
