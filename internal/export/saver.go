package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"MacroPull/internal/domain/models"
)

// Saver writes a batch of records to path.
type Saver interface {
	Save(records []Record, path string) error
	Extension() string
}

// NewSaver returns the saver for format (csv, parquet, json), or nil if the
// format is not supported.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// ParquetSaver writes records as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(records []Record, path string) error {
	return parquet.WriteFile(path, records)
}

// JSONSaver writes records as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(records []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// CSVSaver writes records as CSV with one column per horizon. Missing
// horizons are empty cells.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(records []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := append([]string{"event_time", "event_name", "ticker", "name", "category"}, models.HorizonLabels()...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		line := []string{strconv.FormatInt(r.EventTime, 10), r.EventName, r.Ticker, r.Name, r.Category}
		for _, v := range r.returns() {
			line = append(line, floatStr(v))
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("write %s: %w", r.Ticker, err)
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
