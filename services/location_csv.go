package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"bookingpro-backend/models"
	"bookingpro-backend/utils"
)

// LocationCSVHeader is the column order for import and export.
var LocationCSVHeader = []string{"code", "city", "area", "country", "price_adjustment", "service_fee", "serviceable"}

// ImportStats counts processed rows; Imported+Updated+Failed equals the
// number of processed rows. Skipped rows (fewer than four columns) are not
// processed.
type ImportStats struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (st *ImportStats) fail(line int, format string, args ...interface{}) {
	st.Failed++
	st.Errors = append(st.Errors, fmt.Sprintf("row %d: %s", line, fmt.Sprintf(format, args...)))
}

// ImportCSV upserts locations keyed by postal code. Row 1 is a header.
func (s *LocationStore) ImportCSV(ctx context.Context, r io.Reader) (*ImportStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := &ImportStats{}
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		return nil, invalidField("file", "Could not read the CSV header")
	}

	line := 1
	for {
		row, err := reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.fail(line, "%v", parseErr.Err)
				continue
			}
			return stats, persistence("read csv", err)
		}
		if len(row) < 4 {
			stats.Skipped++
			continue
		}
		s.importRow(ctx, stats, line, row)
	}
	return stats, nil
}

func (s *LocationStore) importRow(ctx context.Context, stats *ImportStats, line int, row []string) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	code := utils.NormZip(field(0))
	if code == "" {
		stats.fail(line, "missing code")
		return
	}
	adjustment, err := parseAmount(field(4))
	if err != nil {
		stats.fail(line, "invalid price_adjustment %q", field(4))
		return
	}
	fee, err := parseAmount(field(5))
	if err != nil || fee < 0 {
		stats.fail(line, "invalid service_fee %q", field(5))
		return
	}
	serviceable, ok := parseYesNo(field(6))
	if !ok {
		stats.fail(line, "invalid serviceable value %q", field(6))
		return
	}

	loc := models.LocationArea{
		ZipCode:         code,
		City:            field(1),
		AreaName:        field(2),
		Country:         field(3),
		PriceAdjustment: adjustment,
		ServiceFee:      fee,
		IsServiceable:   serviceable,
	}
	if loc.Country == "" {
		stats.fail(line, "missing country")
		return
	}

	existing, err := s.GetByZip(ctx, code)
	switch {
	case err == nil:
		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).Save(&loc).Error; err != nil {
			stats.fail(line, "update failed")
			return
		}
		stats.Updated++
	case errors.Is(err, ErrLocationNotFound):
		if err := s.db.WithContext(ctx).Create(&loc).Error; err != nil {
			stats.fail(line, "insert failed")
			return
		}
		stats.Imported++
	default:
		stats.fail(line, "lookup failed")
	}
}

// ExportCSV writes every location in import column order.
func (s *LocationStore) ExportCSV(ctx context.Context, w io.Writer) error {
	var locations []models.LocationArea
	if err := s.db.WithContext(ctx).Order("country, city, zip_code").Find(&locations).Error; err != nil {
		return persistence("list locations", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(LocationCSVHeader); err != nil {
		return err
	}
	for _, loc := range locations {
		serviceable := "no"
		if loc.IsServiceable {
			serviceable = "yes"
		}
		if err := writer.Write([]string{
			loc.ZipCode,
			loc.City,
			loc.AreaName,
			loc.Country,
			strconv.FormatFloat(loc.PriceAdjustment, 'f', 2, 64),
			strconv.FormatFloat(loc.ServiceFee, 'f', 2, 64),
			serviceable,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// parseAmount reads a money column. Blank is zero; NaN and infinities are rejected.
func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not a finite number", s)
	}
	return v, nil
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "", "yes", "y", "1", "true":
		return true, true
	case "no", "n", "0", "false":
		return false, true
	}
	return false, false
}
