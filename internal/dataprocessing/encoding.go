package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrDataFormat is returned when no candidate encoding produces a table
// whose first rows contain the expected store-count marker. The loader
// never guesses beyond the candidate list.
var ErrDataFormat = errors.New("unrecognized data format: no supported encoding matched the expected table content")

// Marker substrings used both to accept a candidate encoding and to locate
// the real header row. Any cell containing the long form also contains the
// short form.
const (
	markerOperatingStores = "운영점포수"
	markerStores          = "점포수"
)

// sniffRows is how many leading rows are inspected for the marker.
const sniffRows = 3

// encodingCandidate pairs a label with a byte-level decode step.
// decode must fail (or flag damage) on bytes that are not valid in the
// encoding rather than silently producing garbage.
type encodingCandidate struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// candidates are tried in order. UTF-8 first so that a UTF-8 file
// containing byte sequences that also happen to be valid EUC-KR is not
// misread. The EUC-KR entry covers CP949 as well: x/text's EUCKR tables
// implement the Windows-949 superset.
var candidates = []encodingCandidate{
	{name: "utf-8", decode: decodeUTF8},
	{name: "euc-kr", decode: decodeEUCKR},
}

func decodeUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid utf-8 byte sequence")
	}
	// Strip a UTF-8 BOM if present; Excel exports often carry one.
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
}

func decodeEUCKR(data []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("euc-kr decode: %w", err)
	}
	// The decoder substitutes U+FFFD for invalid sequences instead of
	// failing. Treat any substitution as a decode failure.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return nil, fmt.Errorf("euc-kr decode produced replacement characters")
	}
	return decoded, nil
}

// readDelimited reads raw bytes of unknown encoding and returns the decoded
// cell grid plus the name of the accepted encoding. Rows are read with no
// header assumption and may have ragged lengths.
func readDelimited(data []byte) ([][]string, string, error) {
	for _, cand := range candidates {
		decoded, err := cand.decode(data)
		if err != nil {
			continue
		}
		rows, err := parseCSV(decoded)
		if err != nil {
			continue
		}
		if containsMarker(rows) {
			return rows, cand.name, nil
		}
	}
	return nil, "", ErrDataFormat
}

// parseCSV parses decoded text into rows. Ragged rows are allowed because
// the metadata rows above the real header rarely have the full width.
func parseCSV(decoded []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty table")
	}
	return rows, nil
}

// containsMarker checks whether the first rows, rendered as one text blob,
// mention the store-count column in either spelling.
func containsMarker(rows [][]string) bool {
	limit := sniffRows
	if len(rows) < limit {
		limit = len(rows)
	}
	var blob strings.Builder
	for _, row := range rows[:limit] {
		for _, cell := range row {
			blob.WriteString(cell)
			blob.WriteByte(' ')
		}
	}
	sample := blob.String()
	return strings.Contains(sample, markerOperatingStores) || strings.Contains(sample, markerStores)
}
