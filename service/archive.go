package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"eventledger/ledger"
	"eventledger/models"
)

// Archives 列出归档
func (s *LedgerService) Archives(ctx context.Context, editionID string) ([]models.Archive, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return data.Archives, nil
}

// CreateArchive 归档当前数据
func (s *LedgerService) CreateArchive(ctx context.Context, editionID, name string) (*models.Archive, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Archive %d", data.BudgetYear)
	}
	a := ledger.Snapshot(data, name, s.now(), s.newID)
	if err := s.repo.SaveArchives(ctx, editionID, append(data.Archives, a)); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteArchive 删除归档
func (s *LedgerService) DeleteArchive(ctx context.Context, editionID, archiveID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	archives, ok := ledger.RemoveArchive(data.Archives, archiveID)
	if !ok {
		return ErrRecordNotFound
	}
	return s.repo.SaveArchives(ctx, editionID, archives)
}

// LoadArchive 用归档内容覆盖当前数据，归档列表保留
func (s *LedgerService) LoadArchive(ctx context.Context, editionID, archiveID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	a, ok := ledger.FindArchive(data.Archives, archiveID)
	if !ok {
		return ErrRecordNotFound
	}
	restored := a.Data
	restored.Archives = data.Archives
	return s.repo.Restore(ctx, editionID, &restored)
}

// Dashboard 年度概览；year 为 0 时使用届次的预算年份
func (s *LedgerService) Dashboard(ctx context.Context, editionID string, year int) (*ledger.Dashboard, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = data.BudgetYear
	}
	return ledger.BuildDashboard(data, year), nil
}

// Dump 导出整份 JSON 备份
func (s *LedgerService) Dump(ctx context.Context, editionID string) ([]byte, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// Restore 从 JSON 备份恢复；解析失败时不写入任何字段，返回 *models.DecodeError
func (s *LedgerService) Restore(ctx context.Context, editionID string, raw []byte) (*models.EditionData, error) {
	if _, err := s.repo.GetEdition(ctx, editionID); err != nil {
		return nil, err
	}
	data, err := models.DecodeBackup(raw, s.now().Year())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, editionID, data); err != nil {
		return nil, err
	}
	return data, nil
}
