package marketfs

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Exporter encodes bars into one file format.
type Exporter interface {
	Encode(bars []models.Bar) ([]byte, error)
	Extension() string
}

// NewExporter returns the exporter for format (csv, parquet, json), or an
// error for anything else.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVExporter{}, nil
	case "parquet", "":
		return ParquetExporter{}, nil
	case "json":
		return JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use csv, parquet or json)", format)
	}
}

// ExportBars encodes bars and writes them to exports/<SYMBOL>.<ext>,
// returning the file path.
func (s *Store) ExportBars(symbol string, exp Exporter, bars []models.Bar) (string, error) {
	data, err := exp.Encode(bars)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s export: %w", exp.Extension(), err)
	}
	key := models.NormalizeSymbol(symbol) + "." + exp.Extension()
	if err := s.WriteRaw("exports", key, data); err != nil {
		return "", err
	}
	path := s.Path("exports", key)
	s.logger.Info().Str("symbol", symbol).Int("bars", len(bars)).Str("path", path).Msg("Bars exported")
	return path, nil
}

// parquetBar is the columnar row layout. Prices are float64 for consumers
// that lack a decimal logical type; the CSV and JSON exports stay exact.
type parquetBar struct {
	Symbol string  `parquet:"symbol,dict"`
	Date   string  `parquet:"date"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume int64   `parquet:"volume"`
}

// ParquetExporter writes a single row group Parquet file.
type ParquetExporter struct{}

func (ParquetExporter) Extension() string { return "parquet" }

func (ParquetExporter) Encode(bars []models.Bar) ([]byte, error) {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Symbol: b.Symbol,
			Date:   b.Date.Format(common.DateLayout),
			Open:   b.Open.InexactFloat64(),
			High:   b.High.InexactFloat64(),
			Low:    b.Low.InexactFloat64(),
			Close:  b.Close.InexactFloat64(),
			Volume: b.Volume,
		}
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVExporter writes a header row then one line per bar.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Encode(bars []models.Bar) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"symbol", "date", "open", "high", "low", "close", "volume"}); err != nil {
		return nil, err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			b.Symbol,
			b.Date.Format(common.DateLayout),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			strconv.FormatInt(b.Volume, 10),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONExporter writes an indented JSON array.
type JSONExporter struct{}

func (JSONExporter) Extension() string { return "json" }

func (JSONExporter) Encode(bars []models.Bar) ([]byte, error) {
	if bars == nil {
		bars = []models.Bar{}
	}
	data, err := json.MarshalIndent(bars, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
