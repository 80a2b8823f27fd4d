package sql_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stopbonus/internal/clock"
	"stopbonus/internal/config"
	"stopbonus/internal/entity"
	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model"
	"stopbonus/internal/model/sql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (model.Repository, *clock.Fixed) {
	t.Helper()
	clk := clock.NewFixed(baseTime)
	cfg := &config.Config{
		DBType:   model.DBTypeSQLite,
		DBPath:   filepath.Join(t.TempDir(), "bonus.db"),
		DBSchema: "bonus",
	}
	repo, err := model.InitRepository(cfg, clk)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, clk
}

func countLinks(t *testing.T, repo model.Repository) int64 {
	t.Helper()
	gormRepo, ok := repo.(*sql.GormRepository)
	require.True(t, ok)
	var n int64
	require.NoError(t, gormRepo.DB().Model(&db.BonusRecordWeapon{}).Count(&n).Error)
	return n
}

func newRecordInput(accountID uint, start time.Time, d time.Duration, weaponIDs ...uint) dto.NewBonusRecord {
	return dto.NewBonusRecord{
		AccountID: accountID,
		StartTime: start,
		EndTime:   start.Add(d),
		Score:     5,
		WeaponIDs: weaponIDs,
	}
}

func TestCreateAccountTrimsAndValidates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "  Alice  ")
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "Alice", account.Name)

	_, err = repo.CreateAccount(ctx, "   ")
	assert.True(t, errors.Is(err, entity.ErrValidation))
	assert.Equal(t, "name", entity.FieldOf(err))

	_, err = repo.CreateAccount(ctx, strings.Repeat("名", 51))
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = repo.CreateAccount(ctx, strings.Repeat("名", 50))
	assert.NoError(t, err)
}

func TestTimestampsComeFromClock(t *testing.T) {
	repo, clk := newTestRepo(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, account.CreateTime.Equal(baseTime))
	assert.True(t, account.LastUpdatedTime.Equal(baseTime))

	clk.Advance(time.Hour)
	name := "Bob"
	updated, err := repo.UpdateAccount(ctx, account.ID, entity.AccountUpdates{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.Name)
	assert.True(t, updated.CreateTime.Equal(baseTime))
	assert.True(t, updated.LastUpdatedTime.Equal(baseTime.Add(time.Hour)))

	_, err = repo.UpdateAccount(ctx, account.ID+100, entity.AccountUpdates{Name: &name})
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestCreateRecordRoundTripsDuration(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)

	shanghai := time.FixedZone("CST", 8*3600)
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, shanghai)
	in := newRecordInput(account.ID, start, 30*time.Minute+5*time.Second)
	in.Remark = "晚上"
	created, err := repo.CreateRecord(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute+5*time.Second, created.Duration)

	loaded, err := repo.GetRecord(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute+5*time.Second, loaded.Duration)
	assert.True(t, loaded.StartTime.Equal(start))
	assert.True(t, loaded.EndTime.Equal(start.Add(30*time.Minute+5*time.Second)))
	assert.Equal(t, uint(5), loaded.Score)
	assert.Equal(t, "晚上", loaded.Remark)
	assert.Empty(t, loaded.Weapons)
}

func TestCreateRecordExplicitDuration(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	account, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)

	in := newRecordInput(account.ID, baseTime, time.Hour)
	d := 40 * time.Minute
	in.Duration = &d
	created, err := repo.CreateRecord(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Minute, created.Duration)
}

func TestCreateRecordValidation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	bob, err := repo.CreateAccount(ctx, "Bob")
	require.NoError(t, err)
	bobsWeapon, err := repo.CreateWeapon(ctx, bob.ID, "Sword")
	require.NoError(t, err)

	negative := -time.Minute
	tests := []struct {
		name   string
		mutate func(*dto.NewBonusRecord)
		kind   error
	}{
		{"end before start", func(in *dto.NewBonusRecord) { in.EndTime = in.StartTime.Add(-time.Second) }, entity.ErrValidation},
		{"score zero", func(in *dto.NewBonusRecord) { in.Score = 0 }, entity.ErrValidation},
		{"score eleven", func(in *dto.NewBonusRecord) { in.Score = 11 }, entity.ErrValidation},
		{"remark too long", func(in *dto.NewBonusRecord) { in.Remark = strings.Repeat("字", 501) }, entity.ErrValidation},
		{"negative duration", func(in *dto.NewBonusRecord) { in.Duration = &negative }, entity.ErrValidation},
		{"missing start", func(in *dto.NewBonusRecord) { in.StartTime = time.Time{} }, entity.ErrValidation},
		{"unknown account", func(in *dto.NewBonusRecord) { in.AccountID = 9999 }, entity.ErrNotFound},
		{"unknown weapon", func(in *dto.NewBonusRecord) { in.WeaponIDs = []uint{9999} }, entity.ErrNotFound},
		{"weapon of other account", func(in *dto.NewBonusRecord) { in.WeaponIDs = []uint{bobsWeapon.ID} }, entity.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newRecordInput(alice.ID, baseTime, time.Minute)
			tt.mutate(&in)
			_, err := repo.CreateRecord(ctx, in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}

	records, err := repo.ListRecords(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	in := newRecordInput(alice.ID, baseTime, time.Minute)
	in.Remark = strings.Repeat("字", 500)
	_, err = repo.CreateRecord(ctx, in)
	assert.NoError(t, err)
}

func TestDeleteAccountCascades(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	other, err := repo.CreateAccount(ctx, "Other")
	require.NoError(t, err)

	hammer, err := repo.CreateWeapon(ctx, alice.ID, "Hammer")
	require.NoError(t, err)
	_, err = repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime, time.Minute, hammer.ID))
	require.NoError(t, err)
	_, err = repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime.Add(time.Hour), time.Minute))
	require.NoError(t, err)

	otherWeapon, err := repo.CreateWeapon(ctx, other.ID, "Bow")
	require.NoError(t, err)
	_, err = repo.CreateRecord(ctx, newRecordInput(other.ID, baseTime, time.Minute, otherWeapon.ID))
	require.NoError(t, err)
	require.EqualValues(t, 2, countLinks(t, repo))

	require.NoError(t, repo.DeleteAccount(ctx, alice.ID))

	weapons, err := repo.ListWeapons(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, weapons)

	records, err := repo.ListRecords(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = repo.GetWeapon(ctx, hammer.ID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	_, err = repo.GetAccount(ctx, alice.ID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	assert.EqualValues(t, 1, countLinks(t, repo))
	otherRecords, err := repo.ListRecords(ctx, other.ID, nil)
	require.NoError(t, err)
	require.Len(t, otherRecords, 1)
	require.Len(t, otherRecords[0].Weapons, 1)
}

func TestDeleteWeaponKeepsRecords(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	hammer, err := repo.CreateWeapon(ctx, alice.ID, "Hammer")
	require.NoError(t, err)
	record, err := repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime, time.Minute, hammer.ID))
	require.NoError(t, err)
	require.Len(t, record.Weapons, 1)

	require.NoError(t, repo.DeleteWeapon(ctx, hammer.ID))

	loaded, err := repo.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Weapons)
	assert.EqualValues(t, 0, countLinks(t, repo))
}

func TestDeleteMissingIsNoop(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.DeleteAccount(ctx, 42))
	assert.NoError(t, repo.DeleteWeapon(ctx, 42))
	assert.NoError(t, repo.DeleteRecord(ctx, 42))
	assert.NoError(t, repo.DeleteRecord(ctx, 0))
}

func TestDeleteRecordRemovesLinks(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	hammer, err := repo.CreateWeapon(ctx, alice.ID, "Hammer")
	require.NoError(t, err)
	record, err := repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime, time.Minute, hammer.ID))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRecord(ctx, record.ID))
	_, err = repo.GetRecord(ctx, record.ID)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	assert.EqualValues(t, 0, countLinks(t, repo))

	weapon, err := repo.GetWeapon(ctx, hammer.ID)
	require.NoError(t, err)
	assert.Zero(t, weapon.UsageCount)
}

func TestListRecordsOrderAndRange(t *testing.T) {
	repo, clk := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)

	var ids []uint
	for i := 0; i < 3; i++ {
		clk.Advance(time.Minute)
		r, err := repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime.AddDate(0, 0, i), time.Minute))
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	records, err := repo.ListRecords(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []uint{ids[2], ids[1], ids[0]}, []uint{records[0].ID, records[1].ID, records[2].ID})

	records, err = repo.ListRecords(ctx, alice.ID, &dto.TimeRange{From: baseTime.AddDate(0, 0, 1), To: baseTime.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ids[1], records[0].ID)

	records, err = repo.ListRecords(ctx, alice.ID, &dto.TimeRange{From: baseTime.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListWeaponsQueryAndUsage(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)
	hammer, err := repo.CreateWeapon(ctx, alice.ID, "Big Hammer")
	require.NoError(t, err)
	_, err = repo.CreateWeapon(ctx, alice.ID, "Sword")
	require.NoError(t, err)
	_, err = repo.CreateWeapon(ctx, alice.ID, "100% Hammer_2")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = repo.CreateRecord(ctx, newRecordInput(alice.ID, baseTime.Add(time.Duration(i)*time.Hour), time.Minute, hammer.ID))
		require.NoError(t, err)
	}

	all, err := repo.ListWeapons(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "100% Hammer_2", all[0].Name)
	assert.Equal(t, "Big Hammer", all[1].Name)
	assert.EqualValues(t, 2, all[1].UsageCount)
	assert.EqualValues(t, 0, all[2].UsageCount)

	hammers, err := repo.ListWeapons(ctx, alice.ID, "hammer")
	require.NoError(t, err)
	assert.Len(t, hammers, 2)

	literal, err := repo.ListWeapons(ctx, alice.ID, "0%")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100% Hammer_2", literal[0].Name)

	_, err = repo.CreateWeapon(ctx, 9999, "Ghost")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	_, err = repo.CreateWeapon(ctx, alice.ID, " ")
	assert.True(t, errors.Is(err, entity.ErrValidation))
}

func TestNestedTransactionRollsBackTogether(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(ctx context.Context) error {
		account, err := repo.CreateAccount(ctx, "Alice")
		if err != nil {
			return err
		}
		return repo.Transaction(ctx, func(ctx context.Context) error {
			assert.True(t, sql.InTransaction(ctx))
			if _, err := repo.CreateWeapon(ctx, account.ID, "Hammer"); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestTransactionCommitsNestedWork(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var accountID uint
	err := repo.Transaction(ctx, func(ctx context.Context) error {
		account, err := repo.CreateAccount(ctx, "Alice")
		if err != nil {
			return err
		}
		accountID = account.ID
		return repo.Transaction(ctx, func(ctx context.Context) error {
			_, err := repo.CreateWeapon(ctx, account.ID, "Hammer")
			return err
		})
	})
	require.NoError(t, err)

	weapons, err := repo.ListWeapons(ctx, accountID, "")
	require.NoError(t, err)
	assert.Len(t, weapons, 1)
}

func TestTransactionAsync(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	err := <-repo.TransactionAsync(ctx, func(ctx context.Context) error {
		_, err := repo.CreateAccount(ctx, "Alice")
		return err
	})
	require.NoError(t, err)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestTransactionAsyncCancelRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := <-repo.TransactionAsync(ctx, func(ctx context.Context) error {
		if _, err := repo.CreateAccount(ctx, "Alice"); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Error(t, err)

	accounts, err := repo.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestTransactionAsyncPanicRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	err := <-repo.TransactionAsync(ctx, func(ctx context.Context) error {
		if _, err := repo.CreateAccount(ctx, "Alice"); err != nil {
			return err
		}
		panic("unexpected")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrStorage))

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestListRecordSpansIsHalfOpen(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.CreateAccount(ctx, "Alice")
	require.NoError(t, err)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{
		from.Add(-time.Second),
		from,
		to.Add(-30 * time.Second),
		to,
	} {
		_, err := repo.CreateRecord(ctx, newRecordInput(alice.ID, start, 10*time.Minute))
		require.NoError(t, err)
	}

	spans, err := repo.ListRecordSpans(ctx, alice.ID, from, to)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.True(t, spans[0].Start.Equal(from))
	assert.True(t, spans[1].Start.Equal(to.Add(-30*time.Second)))
	assert.Equal(t, 10*time.Minute, spans[1].Duration)
}
