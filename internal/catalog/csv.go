// Package catalog imports rooms from spreadsheet exports.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"room-reservation/internal/storage"
)

var (
	ErrMissingColumns = errors.New("CSV file missing required columns")
	ErrEmptyFile      = errors.New("CSV file is empty")
)

// Accepted header names for each column, in the languages exports come in
var (
	nameHeaders     = []string{"name", "nombre", "sala"}
	capacityHeaders = []string{"capacity", "max_capacity", "capacidad", "capacidad_maxima", "capacidad máxima"}
)

// RoomRow is one parsed line of an import file.
type RoomRow struct {
	Line        int
	Name        string
	MaxCapacity int
}

// RowError describes a line that could not be imported.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewReader wraps r in a CSV reader. UTF-16 input with a BOM is decoded,
// anything else is read as UTF-8. A zero comma sniffs the delimiter from
// the header line.
func NewReader(r io.Reader, comma rune) (*csv.Reader, error) {
	// Spreadsheet exports are often UTF-16 with BOM.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	if comma == 0 {
		comma = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader, nil
}

// sniffDelimiter picks the most frequent of tab, semicolon and comma in the first line.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{'\t', ';', ','} {
		if n := bytes.Count(header, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func findColumn(headers []string, names []string) int {
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

// ParseRooms reads every row. Rows with errors are reported and skipped.
func ParseRooms(reader *csv.Reader) ([]RoomRow, []error, error) {
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idxName := findColumn(headers, nameHeaders)
	idxCapacity := findColumn(headers, capacityHeaders)
	if idxName == -1 || idxCapacity == -1 {
		return nil, nil, ErrMissingColumns
	}

	var rows []RoomRow
	var rowErrors []error
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			rowErrors = append(rowErrors, &RowError{Line: line, Err: err})
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) <= idxName || len(record) <= idxCapacity {
			rowErrors = append(rowErrors, &RowError{Line: line, Err: errors.New("too few fields")})
			continue
		}

		name := strings.TrimSpace(record[idxName])
		if name == "" {
			rowErrors = append(rowErrors, &RowError{Line: line, Err: errors.New("empty room name")})
			continue
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(record[idxCapacity]))
		if err != nil || capacity <= 0 {
			rowErrors = append(rowErrors, &RowError{Line: line, Err: fmt.Errorf("invalid capacity %q", record[idxCapacity])})
			continue
		}

		rows = append(rows, RoomRow{Line: line, Name: name, MaxCapacity: capacity})
	}
	return rows, rowErrors, nil
}

// RoomCreator stores rooms.
type RoomCreator interface {
	CreateRoom(ctx context.Context, room *storage.Room) error
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created []storage.Room
	Skipped []error
}

// Import parses r and creates one room per valid row.
func Import(ctx context.Context, store RoomCreator, r io.Reader, comma rune) (*ImportResult, error) {
	reader, err := NewReader(r, comma)
	if err != nil {
		return nil, err
	}
	rows, rowErrors, err := ParseRooms(reader)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: rowErrors}
	for _, row := range rows {
		room := storage.Room{Name: row.Name, MaxCapacity: row.MaxCapacity, Available: true}
		if err := store.CreateRoom(ctx, &room); err != nil {
			return result, fmt.Errorf("line %d: %w", row.Line, err)
		}
		result.Created = append(result.Created, room)
	}

	slog.Info("Rooms imported", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}

// ImportFile opens path and runs Import on it.
func ImportFile(ctx context.Context, store RoomCreator, path string, comma rune) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return Import(ctx, store, f, comma)
}
