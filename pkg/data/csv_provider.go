package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// ColumnMapping describes where each OHLCV field lives in a CSV row.
type ColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
	HasHeader    bool
}

// DefaultCSVFormat matches files laid out as
// timestamp,open,high,low,close,volume with a header row.
var DefaultCSVFormat = ColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
	HasHeader:    true,
}

// CSVProvider implements Provider for local CSV files.
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider creates a CSV provider with the default column layout.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a CSV provider with a custom layout.
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

func (p *CSVProvider) Name() string { return "csv" }

// Load reads all bars from a CSV file and validates them before
// returning. A malformed row is an error, not a skip: silently dropping
// bars would leave gaps in the ordered history contract.
func (p *CSVProvider) Load(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	line := 0
	if p.format.HasHeader {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("reading CSV header: %w", err)
		}
		line = 1
	}

	var bars []types.OHLCV
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV at line %d: %w", line+1, err)
		}
		line++

		if len(record) < p.format.MinColumns {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, p.format.MinColumns, len(record))
		}

		bar, err := p.parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	if err := ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return bars, nil
}

func (p *CSVProvider) parseRecord(record []string) (types.OHLCV, error) {
	ts, err := time.Parse(p.format.DateFormat, record[p.format.TimestampCol])
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid timestamp %q: %w", record[p.format.TimestampCol], err)
	}

	fields := []struct {
		name string
		col  int
		dst  *float64
	}{
		{"open", p.format.OpenCol, nil},
		{"high", p.format.HighCol, nil},
		{"low", p.format.LowCol, nil},
		{"close", p.format.CloseCol, nil},
		{"volume", p.format.VolumeCol, nil},
	}

	bar := types.OHLCV{Timestamp: ts}
	fields[0].dst = &bar.Open
	fields[1].dst = &bar.High
	fields[2].dst = &bar.Low
	fields[3].dst = &bar.Close
	fields[4].dst = &bar.Volume

	for _, f := range fields {
		v, err := strconv.ParseFloat(record[f.col], 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q: %w", f.name, record[f.col], err)
		}
		*f.dst = v
	}

	return bar, nil
}
