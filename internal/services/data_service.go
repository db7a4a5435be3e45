package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"smbpulse/internal/config"
	"smbpulse/internal/dataprocessing"
	"smbpulse/pkg/contracts/domain"
)

// barColumns and lineColumns are the metric columns the dual-axis chart
// draws, in display order. Only columns that exist in the dataset are
// emitted.
var (
	barColumns  = []string{dataprocessing.ColStoreCount, dataprocessing.ColEmployeeCount}
	lineColumns = []string{dataprocessing.ColSalesPerArea, dataprocessing.ColOperatingYears}
)

// labelWrapWords is how many words fit on one chart label line.
const labelWrapWords = 3

// ReloadNotifier is told when the dataset has been reloaded from disk.
// The WebSocket hub implements it.
type ReloadNotifier interface {
	NotifyDataReloaded(status domain.DatasetStatus)
}

// datasetEntry is one immutable cached load result.
type datasetEntry struct {
	table       *dataprocessing.Table
	headerFixed bool
	encoding    string
	loadedAt    time.Time
}

// DataService owns the normalized dataset: it loads the configured
// statistics file through the normalizer, caches the result per path, and
// answers category and chart queries from the cache. Cached tables are
// never handed out directly; every query works on a copy or a derived
// payload.
type DataService struct {
	cfg        *config.Config
	logger     *slog.Logger
	normalizer *dataprocessing.Normalizer
	notifier   ReloadNotifier
	tracer     trace.Tracer

	mu    sync.RWMutex
	cache map[string]*datasetEntry
	loads singleflight.Group
}

// NewDataService creates a data service using the default logger.
func NewDataService(cfg *config.Config) *DataService {
	return NewDataServiceWithLogger(cfg, slog.Default())
}

// NewDataServiceWithLogger creates a data service with a specific logger.
func NewDataServiceWithLogger(cfg *config.Config, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))
	return &DataService{
		cfg:        cfg,
		logger:     logger,
		normalizer: dataprocessing.NewNormalizer(logger),
		tracer:     otel.Tracer("smbpulse/services"),
		cache:      make(map[string]*datasetEntry),
	}
}

// SetReloadNotifier wires the notifier that observes dataset reloads.
func (ds *DataService) SetReloadNotifier(n ReloadNotifier) {
	ds.notifier = n
}

// dataset returns the cached entry for the configured file, loading it on
// first use.
func (ds *DataService) dataset(ctx context.Context) (*datasetEntry, error) {
	path := ds.cfg.DataFilePath()

	ds.mu.RLock()
	entry, ok := ds.cache[path]
	ds.mu.RUnlock()
	if ok {
		return entry, nil
	}

	// Concurrent first requests share one load instead of each parsing
	// the file.
	v, err, _ := ds.loads.Do(path, func() (interface{}, error) {
		entry, err := ds.load(ctx, path)
		if err != nil {
			return nil, err
		}
		ds.mu.Lock()
		ds.cache[path] = entry
		ds.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*datasetEntry), nil
}

// load runs the normalizer and maps its failures onto the service error
// taxonomy.
func (ds *DataService) load(ctx context.Context, path string) (*datasetEntry, error) {
	ctx, span := ds.tracer.Start(ctx, "dataset.load",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	start := time.Now()
	res, err := ds.normalizer.LoadFile(path)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	ds.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.String("encoding", res.Encoding),
		slog.Bool("header_fixed", res.HeaderFixed),
		slog.Int("rows", res.Table.RowCount()),
		slog.Duration("elapsed", time.Since(start)))

	return &datasetEntry{
		table:       res.Table,
		headerFixed: res.HeaderFixed,
		encoding:    res.Encoding,
		loadedAt:    time.Now(),
	}, nil
}

// Categories returns the selectable major industry categories in
// first-seen order. Entries containing the configured municipality marker
// are excluded.
func (ds *DataService) Categories(ctx context.Context) ([]string, error) {
	entry, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}

	majors, ok := entry.table.Strings(dataprocessing.ColMajorCategory)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnMissing, dataprocessing.ColMajorCategory)
	}

	seen := make(map[string]bool)
	var categories []string
	for _, major := range majors {
		if major == "" || seen[major] {
			continue
		}
		seen[major] = true
		if strings.Contains(major, ds.cfg.Data.ExcludedRegionMarker) {
			continue
		}
		categories = append(categories, major)
	}

	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}

// ChartData builds the dual-axis chart payload for one major category:
// rows filtered to the category, subtotal rows optionally dropped, sorted
// descending by store count. Labels are minor-category names wrapped every
// three words.
func (ds *DataService) ChartData(ctx context.Context, category string, hideSubtotal bool) (*domain.ChartData, error) {
	entry, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	table := entry.table

	if !table.HasColumn(dataprocessing.ColMajorCategory) {
		return nil, fmt.Errorf("%w: %s", ErrColumnMissing, dataprocessing.ColMajorCategory)
	}

	filtered := table.Filter(func(row int) bool {
		major, _ := table.Cell(row, dataprocessing.ColMajorCategory)
		if major != category {
			return false
		}
		if hideSubtotal {
			if minor, ok := table.Cell(row, dataprocessing.ColMinorCategory); ok && minor == ds.cfg.Data.SubtotalLabel {
				return false
			}
		}
		return true
	})
	if filtered.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}

	filtered = sortByStoreCountDesc(filtered)

	chart := &domain.ChartData{
		Category:     category,
		RowCount:     filtered.RowCount(),
		HideSubtotal: hideSubtotal,
	}

	if minors, ok := filtered.Strings(dataprocessing.ColMinorCategory); ok {
		chart.Labels = make([]string, len(minors))
		for i, label := range minors {
			chart.Labels[i] = WrapLabel(label, labelWrapWords)
		}
	}

	for _, name := range barColumns {
		if vals, ok := filtered.Floats(name); ok {
			chart.Bars = append(chart.Bars, domain.Series{Name: name, Kind: domain.SeriesBar, Values: vals})
		}
	}
	for _, name := range lineColumns {
		if vals, ok := filtered.Floats(name); ok {
			chart.Lines = append(chart.Lines, domain.Series{Name: name, Kind: domain.SeriesLine, Values: vals})
		}
	}

	if len(chart.Bars) == 0 && len(chart.Lines) == 0 {
		return nil, ErrNoChartColumns
	}
	return chart, nil
}

// TableData returns the filtered rows as JSON-ready records. An empty
// category returns the whole table.
func (ds *DataService) TableData(ctx context.Context, category string, hideSubtotal bool) ([]map[string]interface{}, error) {
	entry, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	table := entry.table

	if category == "" {
		return table.Records(), nil
	}
	if !table.HasColumn(dataprocessing.ColMajorCategory) {
		return nil, fmt.Errorf("%w: %s", ErrColumnMissing, dataprocessing.ColMajorCategory)
	}

	filtered := table.Filter(func(row int) bool {
		major, _ := table.Cell(row, dataprocessing.ColMajorCategory)
		if major != category {
			return false
		}
		if hideSubtotal {
			if minor, ok := table.Cell(row, dataprocessing.ColMinorCategory); ok && minor == ds.cfg.Data.SubtotalLabel {
				return false
			}
		}
		return true
	})
	if filtered.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	return sortByStoreCountDesc(filtered).Records(), nil
}

// FilteredTable returns a private copy of the table restricted to one
// category, for export.
func (ds *DataService) FilteredTable(ctx context.Context, category string, hideSubtotal bool) (*dataprocessing.Table, error) {
	entry, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	table := entry.table

	if category == "" {
		return table.Clone(), nil
	}
	filtered := table.Filter(func(row int) bool {
		major, _ := table.Cell(row, dataprocessing.ColMajorCategory)
		if major != category {
			return false
		}
		if hideSubtotal {
			if minor, ok := table.Cell(row, dataprocessing.ColMinorCategory); ok && minor == ds.cfg.Data.SubtotalLabel {
				return false
			}
		}
		return true
	})
	if filtered.RowCount() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	return sortByStoreCountDesc(filtered), nil
}

// Status describes the currently cached dataset, loading it when needed.
func (ds *DataService) Status(ctx context.Context) (*domain.DatasetStatus, error) {
	entry, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.DatasetStatus{
		Path:        ds.cfg.DataFilePath(),
		Encoding:    entry.encoding,
		HeaderFixed: entry.headerFixed,
		Rows:        entry.table.RowCount(),
		Columns:     entry.table.Headers(),
		LoadedAt:    entry.loadedAt,
	}, nil
}

// Reload drops the cached dataset, loads it again from disk and notifies
// subscribers. It returns the fresh status.
func (ds *DataService) Reload(ctx context.Context) (*domain.DatasetStatus, error) {
	path := ds.cfg.DataFilePath()

	entry, err := ds.load(ctx, path)
	if err != nil {
		return nil, err
	}

	ds.mu.Lock()
	ds.cache[path] = entry
	ds.mu.Unlock()

	status := &domain.DatasetStatus{
		Path:        path,
		Encoding:    entry.encoding,
		HeaderFixed: entry.headerFixed,
		Rows:        entry.table.RowCount(),
		Columns:     entry.table.Headers(),
		LoadedAt:    entry.loadedAt,
	}

	if ds.notifier != nil {
		ds.notifier.NotifyDataReloaded(*status)
	}
	return status, nil
}

// sortByStoreCountDesc orders rows descending by store count. Tables
// without the store-count column are returned unchanged.
func sortByStoreCountDesc(t *dataprocessing.Table) *dataprocessing.Table {
	stores, ok := t.Floats(dataprocessing.ColStoreCount)
	if !ok {
		return t
	}
	indices := make([]int, len(stores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return stores[indices[a]] > stores[indices[b]]
	})
	return t.Select(indices)
}

// WrapLabel inserts a newline after every n space-separated words so long
// minor-category names stay readable on the chart axis.
func WrapLabel(label string, n int) string {
	words := strings.Fields(label)
	if n <= 0 || len(words) <= n {
		return label
	}
	var chunks []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return strings.Join(chunks, "\n")
}
