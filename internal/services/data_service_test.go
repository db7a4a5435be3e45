package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smbpulse/internal/config"
	"smbpulse/internal/dataprocessing"
	"smbpulse/pkg/contracts/domain"
)

const fixtureCSV = "생활밀접업종별(1),생활밀접업종별(2),운영점포수(개),종사자수(명),평균영업기간(년),면적당매출액(백만원/3.3㎡),면적당종사자수(명/3.3㎡)\n" +
	"외식업,한식,\"1,200\",\"3,000\",8.2,12.5,0.4\n" +
	"외식업,중식,300,800,6.1,10.2,0.3\n" +
	"외식업,일식,450,900,5.0,14.0,0.5\n" +
	"외식업,소계,\"1,950\",\"4,700\",6.4,12.2,0.4\n" +
	"서비스업,세탁소,150,200,12.3,4.1,0.2\n" +
	"서울시 전체,소계,\"9,999\",\"20,000\",7.7,9.9,0.4\n"

func newTestService(t *testing.T, csv string) (*DataService, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	cfg := config.Default()
	cfg.Data.File = path
	return NewDataService(cfg), cfg
}

func TestCategories(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	categories, err := ds.Categories(context.Background())
	require.NoError(t, err)

	// 서울시 entries are excluded; order follows first appearance.
	assert.Equal(t, []string{"외식업", "서비스업"}, categories)
}

func TestCategories_FileMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "absent.csv")
	ds := NewDataService(cfg)

	_, err := ds.Categories(context.Background())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestCategories_ColumnMissing(t *testing.T) {
	// The marker is present so the file loads, but there is no
	// major-category column after renaming.
	ds, _ := newTestService(t, "업종,운영점포수(개)\n한식,100\n")

	_, err := ds.Categories(context.Background())
	assert.ErrorIs(t, err, ErrColumnMissing)
}

func TestCategories_AllExcluded(t *testing.T) {
	ds, _ := newTestService(t,
		"생활밀접업종별(1),생활밀접업종별(2),운영점포수(개)\n"+
			"서울시 전체,소계,100\n")

	_, err := ds.Categories(context.Background())
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestChartData(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	chart, err := ds.ChartData(context.Background(), "외식업", true)
	require.NoError(t, err)

	assert.Equal(t, "외식업", chart.Category)
	assert.Equal(t, 3, chart.RowCount)
	assert.True(t, chart.HideSubtotal)

	// Sorted descending by store count: 한식 1200, 일식 450, 중식 300.
	assert.Equal(t, []string{"한식", "일식", "중식"}, chart.Labels)

	require.Len(t, chart.Bars, 2)
	assert.Equal(t, dataprocessing.ColStoreCount, chart.Bars[0].Name)
	assert.Equal(t, domain.SeriesBar, chart.Bars[0].Kind)
	assert.Equal(t, []float64{1200, 450, 300}, chart.Bars[0].Values)
	assert.Equal(t, dataprocessing.ColEmployeeCount, chart.Bars[1].Name)
	assert.Equal(t, []float64{3000, 900, 800}, chart.Bars[1].Values)

	require.Len(t, chart.Lines, 2)
	assert.Equal(t, dataprocessing.ColSalesPerArea, chart.Lines[0].Name)
	assert.Equal(t, domain.SeriesLine, chart.Lines[0].Kind)
	assert.Equal(t, []float64{12.5, 14.0, 10.2}, chart.Lines[0].Values)
	assert.Equal(t, dataprocessing.ColOperatingYears, chart.Lines[1].Name)
}

func TestChartData_SubtotalKept(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	chart, err := ds.ChartData(context.Background(), "외식업", false)
	require.NoError(t, err)

	assert.Equal(t, 4, chart.RowCount)
	// The subtotal row has the largest store count and sorts first.
	assert.Equal(t, "소계", chart.Labels[0])
}

func TestChartData_CategoryNotFound(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	_, err := ds.ChartData(context.Background(), "숙박업", true)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestChartData_PartialColumns(t *testing.T) {
	ds, _ := newTestService(t,
		"생활밀접업종별(1),생활밀접업종별(2),운영점포수(개)\n"+
			"외식업,한식,100\n"+
			"외식업,중식,200\n")

	chart, err := ds.ChartData(context.Background(), "외식업", true)
	require.NoError(t, err)

	require.Len(t, chart.Bars, 1)
	assert.Equal(t, dataprocessing.ColStoreCount, chart.Bars[0].Name)
	assert.Empty(t, chart.Lines)
}

func TestTableData(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	records, err := ds.TableData(context.Background(), "외식업", true)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "한식", records[0][dataprocessing.ColMinorCategory])
	assert.Equal(t, 1200.0, records[0][dataprocessing.ColStoreCount])
}

func TestStatus(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)

	status, err := ds.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "utf-8", status.Encoding)
	assert.True(t, status.HeaderFixed)
	assert.Equal(t, 6, status.Rows)
	assert.Contains(t, status.Columns, dataprocessing.ColStoreCount)
	assert.False(t, status.LoadedAt.IsZero())
}

func TestCacheIsReadThrough(t *testing.T) {
	ds, cfg := newTestService(t, fixtureCSV)
	ctx := context.Background()

	_, err := ds.Categories(ctx)
	require.NoError(t, err)

	// Rewriting the file does not change answers until a reload.
	require.NoError(t, os.WriteFile(cfg.Data.File, []byte(
		"생활밀접업종별(1),생활밀접업종별(2),운영점포수(개)\n"+
			"숙박업,모텔,10\n"), 0644))

	categories, err := ds.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"외식업", "서비스업"}, categories)
}

type recordingNotifier struct {
	statuses []domain.DatasetStatus
}

func (r *recordingNotifier) NotifyDataReloaded(status domain.DatasetStatus) {
	r.statuses = append(r.statuses, status)
}

func TestReload(t *testing.T) {
	ds, cfg := newTestService(t, fixtureCSV)
	ctx := context.Background()

	notifier := &recordingNotifier{}
	ds.SetReloadNotifier(notifier)

	_, err := ds.Categories(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.Data.File, []byte(
		"생활밀접업종별(1),생활밀접업종별(2),운영점포수(개)\n"+
			"숙박업,모텔,10\n"), 0644))

	status, err := ds.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Rows)
	require.Len(t, notifier.statuses, 1)

	categories, err := ds.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"숙박업"}, categories)
}

func TestWrapLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"한식", "한식"},
		{"한식 일반 음식점", "한식 일반 음식점"},
		{"한식 일반 음식점 및 주점", "한식 일반 음식점\n및 주점"},
		{"a b c d e f g", "a b c\nd e f\ng"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WrapLabel(tt.in, 3), tt.in)
	}
}

func TestHealthService(t *testing.T) {
	ds, _ := newTestService(t, fixtureCSV)
	hs := NewHealthService(ds, nil, "test")

	h := hs.Check(context.Background())
	assert.Equal(t, "healthy", h.Status)
	require.NotNil(t, h.Dataset)
	assert.Equal(t, 6, h.Dataset.Rows)
}

func TestHealthService_Degraded(t *testing.T) {
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "absent.csv")
	hs := NewHealthService(NewDataService(cfg), nil, "test")

	h := hs.Check(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Nil(t, h.Dataset)
	assert.NotEmpty(t, h.Error)
}
