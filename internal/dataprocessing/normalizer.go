package dataprocessing

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// renameRule maps a source-header fragment to its canonical column name.
// Matching is substring containment on the cleaned header.
type renameRule struct {
	fragment  string
	canonical string
}

// renameRules is evaluated in order for every header; when several
// fragments match the same header, the last matching rule wins. Keep the
// evaluation as an ordered list so that the tie-break stays deterministic.
var renameRules = []renameRule{
	{"생활밀접업종별(1)", ColMajorCategory},
	{"생활밀접업종별(2)", ColMinorCategory},
	{"운영점포수(개)", ColStoreCount},
	{"종사자수(명)", ColEmployeeCount},
	{"평균영업기간(년)", ColOperatingYears},
	{"면적당매출액(백만원/3.3㎡)", ColSalesPerArea},
	{"면적당종사자수(명/3.3㎡)", ColWorkersPerArea},
}

// Normalizer turns a raw statistics file into a normalized Table.
// It is stateless; caching of results is owned by the caller.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to the
// default slog logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// LoadResult carries the normalized table together with load metadata.
type LoadResult struct {
	Table       *Table
	HeaderFixed bool
	Encoding    string
}

// Load reads the file at path, detects its encoding and header row, renames
// the columns to canonical names and coerces the metric columns to numbers.
// The second return value reports whether a misplaced header row had to be
// promoted. Cells in metric columns that fail to parse become zero; that is
// deliberate, dirty input must not abort the load.
func (n *Normalizer) Load(path string) (*Table, bool, error) {
	res, err := n.LoadFile(path)
	if err != nil {
		return nil, false, err
	}
	return res.Table, res.HeaderFixed, nil
}

// LoadFile is Load with the accepted encoding included in the result.
func (n *Normalizer) LoadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	rows, encodingName, err := readDelimited(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	n.logger.Info("statistics file decoded",
		slog.String("path", path),
		slog.String("encoding", encodingName),
		slog.Int("raw_rows", len(rows)))

	headers, dataRows, headerFixed := splitHeader(rows)
	if headerFixed {
		n.logger.Info("promoted misplaced header row",
			slog.Int("data_rows", len(dataRows)))
	}

	headers = cleanHeaders(headers)
	headers = renameHeaders(headers)

	table := NewTable(headers, dataRows)
	coerceNumericColumns(table)

	return &LoadResult{Table: table, HeaderFixed: headerFixed, Encoding: encodingName}, nil
}

// splitHeader locates the real header row within the first three rows (the
// first one whose cells mention the store-count marker) and drops everything
// above it. When no row qualifies, row 0 is assumed to already be the header.
func splitHeader(rows [][]string) (headers []string, data [][]string, fixed bool) {
	limit := sniffRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.Contains(cell, markerStores) {
				return rows[i], rows[i+1:], true
			}
		}
	}
	return rows[0], rows[1:], false
}

// cleanHeaders removes every whitespace character from each header.
// Running it twice yields the same result.
func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, h)
	}
	return out
}

// renameHeaders applies the fragment rules to each header. Headers matching
// no fragment are kept as-is.
func renameHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		renamed := h
		for _, rule := range renameRules {
			if strings.Contains(h, rule.fragment) {
				renamed = rule.canonical
			}
		}
		out[i] = renamed
	}
	return out
}

// coerceNumericColumns parses every cell of the designated metric columns
// that exist in the table. Thousands separators are stripped first; a cell
// that still fails to parse becomes zero.
func coerceNumericColumns(t *Table) {
	for _, name := range NumericColumns {
		cells, ok := t.Strings(name)
		if !ok {
			continue
		}
		vals := make([]float64, len(cells))
		for i, cell := range cells {
			vals[i] = parseNumber(cell)
		}
		t.setNumeric(name, vals)
	}
}

func parseNumber(cell string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
