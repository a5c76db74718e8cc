package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"eventledger/ledger"
	"eventledger/models"
	"eventledger/repository"

	"github.com/shopspring/decimal"
)

// collection 描述届次数据中的一个记录列表
type collection[T any] struct {
	list    func(*models.EditionData) []T
	save    func(*repository.Repository, context.Context, string, []T) error
	id      func(T) string
	setID   func(*T, string)
	prepare func(s *LedgerService, item *T, creating bool) error
}

func listIn[T any](ctx context.Context, s *LedgerService, editionID string, c collection[T]) ([]T, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return c.list(data), nil
}

func createIn[T any](ctx context.Context, s *LedgerService, editionID string, c collection[T], item T) (*T, error) {
	c.setID(&item, s.newID())
	if c.prepare != nil {
		if err := c.prepare(s, &item, true); err != nil {
			return nil, err
		}
	}
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	if err := c.save(s.repo, ctx, editionID, append(c.list(data), item)); err != nil {
		return nil, err
	}
	return &item, nil
}

func updateIn[T any](ctx context.Context, s *LedgerService, editionID, itemID string, c collection[T], item T) (*T, error) {
	c.setID(&item, itemID)
	if c.prepare != nil {
		if err := c.prepare(s, &item, false); err != nil {
			return nil, err
		}
	}
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	items, ok := replaceByID(c.list(data), item, c.id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	if err := c.save(s.repo, ctx, editionID, items); err != nil {
		return nil, err
	}
	return &item, nil
}

func deleteIn[T any](ctx context.Context, s *LedgerService, editionID, itemID string, c collection[T]) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	items, ok := removeByID(c.list(data), itemID, c.id)
	if !ok {
		return ErrRecordNotFound
	}
	return c.save(s.repo, ctx, editionID, items)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s必填", ledger.ErrInvalidInput, field)
	}
	return nil
}

var sponsorCollection = collection[models.Sponsor]{
	list:  func(d *models.EditionData) []models.Sponsor { return d.Sponsors },
	save:  (*repository.Repository).SaveSponsors,
	id:    func(x models.Sponsor) string { return x.ID },
	setID: func(x *models.Sponsor, id string) { x.ID = id },
	prepare: func(_ *LedgerService, x *models.Sponsor, _ bool) error {
		if x.Status == "" {
			x.Status = models.SponsorPending
		}
		if err := required("名称", x.Name); err != nil {
			return err
		}
		if err := x.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
		}
		return nil
	},
}

func (s *LedgerService) Sponsors(ctx context.Context, editionID string) ([]models.Sponsor, error) {
	return listIn(ctx, s, editionID, sponsorCollection)
}

func (s *LedgerService) CreateSponsor(ctx context.Context, editionID string, sp models.Sponsor) (*models.Sponsor, error) {
	return createIn(ctx, s, editionID, sponsorCollection, sp)
}

func (s *LedgerService) UpdateSponsor(ctx context.Context, editionID, sponsorID string, sp models.Sponsor) (*models.Sponsor, error) {
	return updateIn(ctx, s, editionID, sponsorID, sponsorCollection, sp)
}

func (s *LedgerService) DeleteSponsor(ctx context.Context, editionID, sponsorID string) error {
	return deleteIn(ctx, s, editionID, sponsorID, sponsorCollection)
}

// GetSponsor 按 id 查找赞助商
func (s *LedgerService) GetSponsor(ctx context.Context, editionID, sponsorID string) (*models.Sponsor, error) {
	list, err := s.Sponsors(ctx, editionID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(list, func(x models.Sponsor) bool { return x.ID == sponsorID })
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return &list[i], nil
}

// MarkSponsorReminded 记录催款日期
func (s *LedgerService) MarkSponsorReminded(ctx context.Context, editionID, sponsorID, date string) (*models.Sponsor, error) {
	sp, err := s.GetSponsor(ctx, editionID, sponsorID)
	if err != nil {
		return nil, err
	}
	sp.DateReminder = date
	return s.UpdateSponsor(ctx, editionID, sponsorID, *sp)
}

var contactCollection = collection[models.Contact]{
	list:  func(d *models.EditionData) []models.Contact { return d.Contacts },
	save:  (*repository.Repository).SaveContacts,
	id:    func(x models.Contact) string { return x.ID },
	setID: func(x *models.Contact, id string) { x.ID = id },
	prepare: func(_ *LedgerService, x *models.Contact, _ bool) error {
		return required("姓名", x.Name)
	},
}

// Contacts 列出联系人；search 非空时按姓名、机构、角色做不区分大小写的包含匹配
func (s *LedgerService) Contacts(ctx context.Context, editionID, search string) ([]models.Contact, error) {
	list, err := listIn(ctx, s, editionID, contactCollection)
	if err != nil || search == "" {
		return list, err
	}
	q := strings.ToLower(search)
	out := make([]models.Contact, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Organization), q) ||
			strings.Contains(strings.ToLower(c.Role), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *LedgerService) CreateContact(ctx context.Context, editionID string, c models.Contact) (*models.Contact, error) {
	return createIn(ctx, s, editionID, contactCollection, c)
}

func (s *LedgerService) UpdateContact(ctx context.Context, editionID, contactID string, c models.Contact) (*models.Contact, error) {
	return updateIn(ctx, s, editionID, contactID, contactCollection, c)
}

func (s *LedgerService) DeleteContact(ctx context.Context, editionID, contactID string) error {
	return deleteIn(ctx, s, editionID, contactID, contactCollection)
}

var contributionCollection = collection[models.Contribution]{
	list:  func(d *models.EditionData) []models.Contribution { return d.Contributions },
	save:  (*repository.Repository).SaveContributions,
	id:    func(x models.Contribution) string { return x.ID },
	setID: func(x *models.Contribution, id string) { x.ID = id },
	prepare: func(_ *LedgerService, x *models.Contribution, _ bool) error {
		if x.Quantity.IsNegative() || x.UnitValue.IsNegative() {
			return fmt.Errorf("%w: 数量和单价不能为负", ledger.ErrInvalidInput)
		}
		return required("描述", x.Description)
	},
}

// ContributionsView 实物捐赠列表及折算总额
type ContributionsView struct {
	Items []models.Contribution `json:"items"`
	Total decimal.Decimal       `json:"total"`
}

func (s *LedgerService) Contributions(ctx context.Context, editionID string) (*ContributionsView, error) {
	list, err := listIn(ctx, s, editionID, contributionCollection)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, c := range list {
		total = total.Add(c.Value())
	}
	return &ContributionsView{Items: list, Total: total}, nil
}

func (s *LedgerService) CreateContribution(ctx context.Context, editionID string, c models.Contribution) (*models.Contribution, error) {
	return createIn(ctx, s, editionID, contributionCollection, c)
}

func (s *LedgerService) UpdateContribution(ctx context.Context, editionID, contributionID string, c models.Contribution) (*models.Contribution, error) {
	return updateIn(ctx, s, editionID, contributionID, contributionCollection, c)
}

func (s *LedgerService) DeleteContribution(ctx context.Context, editionID, contributionID string) error {
	return deleteIn(ctx, s, editionID, contributionID, contributionCollection)
}

var volunteerCollection = collection[models.Volunteer]{
	list:  func(d *models.EditionData) []models.Volunteer { return d.Volunteers },
	save:  (*repository.Repository).SaveVolunteers,
	id:    func(x models.Volunteer) string { return x.ID },
	setID: func(x *models.Volunteer, id string) { x.ID = id },
	prepare: func(s *LedgerService, x *models.Volunteer, creating bool) error {
		if creating || x.CreatedAt == 0 {
			x.CreatedAt = s.now().UnixMilli()
		}
		return required("姓名", x.Name)
	},
}

// Volunteers 组织者在前，其余按姓名排序
func (s *LedgerService) Volunteers(ctx context.Context, editionID string) ([]models.Volunteer, error) {
	list, err := listIn(ctx, s, editionID, volunteerCollection)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b models.Volunteer) int {
		if a.IsOrganizer != b.IsOrganizer {
			if a.IsOrganizer {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (s *LedgerService) CreateVolunteer(ctx context.Context, editionID string, v models.Volunteer) (*models.Volunteer, error) {
	return createIn(ctx, s, editionID, volunteerCollection, v)
}

func (s *LedgerService) UpdateVolunteer(ctx context.Context, editionID, volunteerID string, v models.Volunteer) (*models.Volunteer, error) {
	return updateIn(ctx, s, editionID, volunteerID, volunteerCollection, v)
}

func (s *LedgerService) DeleteVolunteer(ctx context.Context, editionID, volunteerID string) error {
	return deleteIn(ctx, s, editionID, volunteerID, volunteerCollection)
}

var eventCollection = collection[models.AppEvent]{
	list:  func(d *models.EditionData) []models.AppEvent { return d.Events },
	save:  (*repository.Repository).SaveEvents,
	id:    func(x models.AppEvent) string { return x.ID },
	setID: func(x *models.AppEvent, id string) { x.ID = id },
	prepare: func(_ *LedgerService, x *models.AppEvent, _ bool) error {
		if x.Color == "" {
			x.Color = models.DefaultEventColor
		}
		return required("名称", x.Name)
	},
}

func (s *LedgerService) Events(ctx context.Context, editionID string) ([]models.AppEvent, error) {
	return listIn(ctx, s, editionID, eventCollection)
}

func (s *LedgerService) CreateEvent(ctx context.Context, editionID string, e models.AppEvent) (*models.AppEvent, error) {
	return createIn(ctx, s, editionID, eventCollection, e)
}

func (s *LedgerService) UpdateEvent(ctx context.Context, editionID, eventID string, e models.AppEvent) (*models.AppEvent, error) {
	return updateIn(ctx, s, editionID, eventID, eventCollection, e)
}

func (s *LedgerService) DeleteEvent(ctx context.Context, editionID, eventID string) error {
	return deleteIn(ctx, s, editionID, eventID, eventCollection)
}

func categoriesOf(data *models.EditionData, typ models.TransactionType) ([]string, error) {
	switch typ {
	case models.TransactionIncome:
		return data.CategoriesIncome, nil
	case models.TransactionExpense:
		return data.CategoriesExpense, nil
	}
	return nil, fmt.Errorf("%w: 未知分类类型 %q", ledger.ErrInvalidInput, typ)
}

// Categories 收入或支出分类
func (s *LedgerService) Categories(ctx context.Context, editionID string, typ models.TransactionType) ([]string, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return categoriesOf(data, typ)
}

// AddCategory 追加分类，重名时报错
func (s *LedgerService) AddCategory(ctx context.Context, editionID string, typ models.TransactionType, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if err := required("分类名", name); err != nil {
		return nil, err
	}
	cats, err := s.Categories(ctx, editionID, typ)
	if err != nil {
		return nil, err
	}
	if slices.Contains(cats, name) {
		return nil, fmt.Errorf("%w: 分类 %s 已存在", ledger.ErrInvalidInput, name)
	}
	cats = append(slices.Clone(cats), name)
	if err := s.repo.SaveCategories(ctx, editionID, typ, cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// DeleteCategory 删除分类，已有交易的分类字段保持不变
func (s *LedgerService) DeleteCategory(ctx context.Context, editionID string, typ models.TransactionType, name string) ([]string, error) {
	cats, err := s.Categories(ctx, editionID, typ)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(cats, name) {
		return nil, ErrRecordNotFound
	}
	cats = slices.DeleteFunc(slices.Clone(cats), func(c string) bool { return c == name })
	if err := s.repo.SaveCategories(ctx, editionID, typ, cats); err != nil {
		return nil, err
	}
	return cats, nil
}
