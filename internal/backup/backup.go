// Package backup exports every account with its weapons and records as a JSON
// snapshot and hands it to a storage backend.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stopbonus/internal/clock"
	"stopbonus/internal/entity"
	"stopbonus/internal/entity/converter"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model"
	"stopbonus/internal/model/sql"
	"stopbonus/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// SnapshotVersion 快照格式版本。
	SnapshotVersion = 1

	snapshotCategory  = "snapshots"
	snapshotExtension = "json"
)

// Service 生成并保存数据快照。
type Service struct {
	repo  model.Repository
	store storage.Storage
	clock clock.Clock
}

// NewService creates a backup service. A nil clock falls back to the system clock.
func NewService(repo model.Repository, store storage.Storage, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, store: store, clock: clk}
}

// Snapshot 在一个只读事务内读取全部数据并投影为视图。
func (s *Service) Snapshot(ctx context.Context) (dto.Snapshot, error) {
	snap := dto.Snapshot{Version: SnapshotVersion}
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		accounts, err := s.repo.ListAccounts(ctx)
		if err != nil {
			return err
		}
		snap.Accounts = make([]dto.AccountSnapshot, 0, len(accounts))
		for i := range accounts {
			weapons, err := s.repo.ListWeapons(ctx, accounts[i].ID, "")
			if err != nil {
				return err
			}
			records, err := s.repo.ListRecords(ctx, accounts[i].ID, nil)
			if err != nil {
				return err
			}
			snap.Accounts = append(snap.Accounts, dto.AccountSnapshot{
				Account: converter.AccountToView(&accounts[i]),
				Weapons: converter.WeaponsToViews(weapons),
				Records: converter.RecordsToViews(records),
			})
		}
		return nil
	}, sql.ReadOnly())
	if err != nil {
		return dto.Snapshot{}, err
	}
	snap.ExportedAt = s.clock.Now().UTC()
	return snap, nil
}

// Create 导出快照并写入存储，返回对象键和统计数量。
func (s *Service) Create(ctx context.Context) (dto.BackupResult, error) {
	if s.store == nil {
		return dto.BackupResult{}, entity.Storage("CreateBackup", fmt.Errorf("storage not configured"))
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return dto.BackupResult{}, err
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return dto.BackupResult{}, entity.Storage("CreateBackup", fmt.Errorf("encode snapshot: %w", err))
	}

	key, err := s.store.Save(ctx, payload, storage.SaveOptions{
		Category:  snapshotCategory,
		Extension: snapshotExtension,
		BaseName:  snapshotBaseName(snap),
	})
	if err != nil {
		return dto.BackupResult{}, entity.Storage("CreateBackup", err)
	}

	result := dto.BackupResult{
		Key:         key,
		Accounts:    len(snap.Accounts),
		Bytes:       len(payload),
		CompletedAt: s.clock.Now().UTC(),
	}
	for _, a := range snap.Accounts {
		result.Weapons += len(a.Weapons)
		result.Records += len(a.Records)
	}

	logrus.WithFields(logrus.Fields{
		"key":      result.Key,
		"accounts": result.Accounts,
		"records":  result.Records,
		"bytes":    result.Bytes,
	}).Info("backup snapshot stored")

	return result, nil
}

func snapshotBaseName(snap dto.Snapshot) string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("bonus-%s-%s", snap.ExportedAt.Format("20060102T150405Z"), id)
}
