package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"realty-sync/models"
)

// CSVWriter exports persisted offers to a CSV file for the admin side.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"internal_id", "address", "locality", "region", "property_type",
		"rooms", "floor", "area_total", "price", "currency",
		"number_flat", "is_new_flat", "last_update_date", "photo_count",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteOffers appends one row per offer.
func (c *CSVWriter) WriteOffers(offers []*models.Offer) error {
	for _, o := range offers {
		row := []string{
			o.InternalID,
			o.Address,
			o.LocalityName,
			o.Region,
			o.PropertyType,
			intField(o.Rooms),
			intField(o.Floor),
			floatField(o.AreaTotal),
			floatField(o.Price),
			o.Currency,
			o.NumberFlat,
			strconv.FormatBool(o.IsNewFlat),
			timeField(o.LastUpdateDate),
			strconv.Itoa(len(o.PhotoList())),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func timeField(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}
