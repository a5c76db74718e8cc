package models

// DefaultIncomeCategories 默认收入类别
func DefaultIncomeCategories() []string {
	return []string{"Inscriptions", "Aides Publiques", "Partenaires", "Ventes", "Divers"}
}

// DefaultExpenseCategories 默认支出类别
func DefaultExpenseCategories() []string {
	return []string{"Logistique", "Animation", "Sécurité", "Communication", "Achats Divers"}
}
