package converter

import (
	"testing"
	"time"

	"stopbonus/internal/entity/db"
	"stopbonus/internal/entity/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToViewCopiesAndOverrides(t *testing.T) {
	zone := time.FixedZone("CST", 8*3600)
	start := time.Date(2024, 3, 5, 18, 0, 0, 0, zone)
	record := &db.BonusRecord{
		ID:        3,
		AccountID: 1,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Duration:  time.Hour,
		Score:     4,
		Remark:    "原始",
		Weapons:   []db.Weapon{{ID: 9, AccountID: 1, Name: "Hammer"}},
	}

	view := RecordToView(record)
	assert.Equal(t, uint(3), view.ID)
	assert.Equal(t, time.UTC, view.StartTime.Location())
	assert.True(t, view.StartTime.Equal(start))
	assert.Equal(t, uint(4), view.Score)
	require.Len(t, view.Weapons, 1)
	assert.Equal(t, "Hammer", view.Weapons[0].Name)

	overridden := RecordToView(record,
		WithRecordRemark("改过"),
		WithRecordScore(10),
		WithRecordWeapons(nil),
	)
	assert.Equal(t, "改过", overridden.Remark)
	assert.Equal(t, uint(10), overridden.Score)
	assert.Empty(t, overridden.Weapons)
	assert.True(t, overridden.SameAs(view))

	// 原实体不受影响
	assert.Equal(t, "原始", record.Remark)
	assert.Len(t, record.Weapons, 1)
}

func TestWeaponsOverrideCopiesSlice(t *testing.T) {
	weapons := []dto.WeaponView{{ID: 1, Name: "a"}}
	view := RecordToView(&db.BonusRecord{ID: 1}, WithRecordWeapons(weapons))
	weapons[0].Name = "b"
	assert.Equal(t, "a", view.Weapons[0].Name)
}

func TestNilEntities(t *testing.T) {
	assert.Equal(t, dto.AccountView{}, AccountToView(nil))
	assert.Equal(t, dto.WeaponView{}, WeaponToView(nil))
	assert.Equal(t, dto.BonusRecordView{}, RecordToView(nil))
}

func TestAccountAndWeaponOverrides(t *testing.T) {
	account := AccountToView(&db.Account{ID: 1, Name: "A"}, WithAccountName("B"))
	assert.Equal(t, "B", account.Name)
	assert.Equal(t, uint(1), account.Key())

	weapon := WeaponToView(&db.Weapon{ID: 2, AccountID: 1, Name: "Hammer", UsageCount: 3}, WithWeaponName("Mallet"))
	assert.Equal(t, "Mallet", weapon.Name)
	assert.EqualValues(t, 3, weapon.UsageCount)
	assert.False(t, weapon.SameAs(dto.WeaponView{ID: 3, Name: "Mallet"}))

	views := AccountsToViews([]db.Account{{ID: 1}, {ID: 2}})
	require.Len(t, views, 2)
	assert.Equal(t, uint(2), views[1].ID)
}
