package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"stopbonus/internal/backup"
	"stopbonus/internal/clock"
	"stopbonus/internal/config"
	"stopbonus/internal/entity/dto"
	"stopbonus/internal/model"
	"stopbonus/internal/service"
	"stopbonus/internal/settings"
	"stopbonus/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	clk := clock.NewFixed(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	repo, err := model.InitRepository(&config.Config{
		DBType: model.DBTypeSQLite,
		DBPath: filepath.Join(dir, "bonus.db"),
	}, clk)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store := settings.Load(filepath.Join(dir, "config.json"))
	require.NoError(t, store.SetTimezone("UTC"))

	files, err := storage.NewLocalStorage(filepath.Join(dir, "backups"), clk)
	require.NoError(t, err)

	handler := NewHTTPHandler(
		service.NewBonusService(repo, store),
		store,
		backup.NewService(repo, files, clk),
		clk,
	)
	r := gin.New()
	handler.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountWeaponRecordFlow(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/accounts", gin.H{"name": " Alice "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	account := decode[dto.AccountDetailResponse](t, w).Account
	assert.Equal(t, "Alice", account.Name)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/accounts/%d/weapons", account.ID), gin.H{"name": "Hammer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	weapon := decode[dto.WeaponDetailResponse](t, w).Weapon

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/accounts/%d/records", account.ID), gin.H{
		"start_time": "2024-03-05T10:00:00Z",
		"end_time":   "2024-03-05T10:30:00Z",
		"score":      7,
		"remark":     "ok",
		"weapon_ids": []uint{weapon.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	record := decode[dto.BonusRecordDetailResponse](t, w).Record
	assert.Equal(t, 30*time.Minute, record.Duration)
	require.Len(t, record.Weapons, 1)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/accounts/%d/weapons?q=ham", account.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	weapons := decode[dto.WeaponListResponse](t, w).Weapons
	require.Len(t, weapons, 1)
	assert.Equal(t, int64(1), weapons[0].UsageCount)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/accounts/%d/records?from=2024-03-01T00:00:00Z&to=2024-04-01T00:00:00Z", account.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.BonusRecordListResponse](t, w).Records, 1)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/accounts/%d/stats/daily?year=2024&month=3", account.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	daily := decode[dto.DailyStats](t, w)
	require.Len(t, daily.Days, 31)
	assert.Equal(t, 1, daily.Days[4].Count)
	assert.Equal(t, 30.0, daily.Days[4].TotalMinutes)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/accounts/%d/stats/monthly", account.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	monthly := decode[dto.MonthlyStats](t, w)
	assert.Equal(t, 2024, monthly.Year)
	require.Len(t, monthly.Months, 12)
	assert.Equal(t, 1, monthly.Months[2].Count)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/accounts/%d/stats/overview?year=2024&month=2&tz=Asia/Tokyo", account.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	overview := decode[dto.StatsOverview](t, w)
	assert.Equal(t, "Asia/Tokyo", overview.Daily.Zone)
	assert.Len(t, overview.Daily.Days, 29)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/weapons/%d", weapon.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/records/%d", record.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.BonusRecordDetailResponse](t, w).Record.Weapons)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/accounts/%d", account.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/records/%d", record.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad id", http.MethodDelete, "/api/accounts/abc", nil, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"missing name", http.MethodPost, "/api/accounts", gin.H{}, http.StatusBadRequest, ErrCodeMissingField},
		{"blank name", http.MethodPost, "/api/accounts", gin.H{"name": "   "}, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"unknown account weapon", http.MethodPost, "/api/accounts/99/weapons", gin.H{"name": "Saw"}, http.StatusNotFound, ErrCodeNotFound},
		{"rename missing", http.MethodPatch, "/api/weapons/5", gin.H{"name": "Saw"}, http.StatusNotFound, ErrCodeNotFound},
		{"bad range", http.MethodGet, "/api/accounts/1/records?from=yesterday", nil, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"bad month", http.MethodGet, "/api/accounts/1/stats/daily?year=2024&month=13", nil, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"bad tz", http.MethodGet, "/api/accounts/1/stats/monthly?tz=Mars/Base", nil, http.StatusBadRequest, ErrCodeInvalidTimezone},
		{"bad settings", http.MethodPut, "/api/settings", gin.H{"timezone": "Nowhere/City"}, http.StatusBadRequest, ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[APIError](t, w).Code)
		})
	}
}

func TestSettingsEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "UTC", decode[dto.Settings](t, w).Timezone)

	w = doJSON(t, r, http.MethodPut, "/api/settings", gin.H{"timezone": "Asia/Shanghai"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Asia/Shanghai", decode[dto.Settings](t, w).Timezone)

	w = doJSON(t, r, http.MethodGet, "/api/settings/timezones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.TimezoneListResponse](t, w).Timezones, 10)
}

func TestCreateBackupEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/accounts", gin.H{"name": "Alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/backups", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[dto.BackupResult](t, w)
	assert.Equal(t, 1, result.Accounts)
	assert.Contains(t, result.Key, "snapshots/2024/03/10/")

	gin.SetMode(gin.TestMode)
	bare := gin.New()
	NewHTTPHandler(nil, nil, nil, nil).RegisterRoutes(bare)
	w = doJSON(t, bare, http.MethodPost, "/api/backups", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
