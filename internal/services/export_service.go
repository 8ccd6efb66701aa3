package services

import (
	"database/sql"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fartlog/fartlog-be/internal/timeutil"
)

// Fixed localized header shared by both export formats.
var exportHeaders = []string{"时间", "时长", "类型", "臭味程度", "温感", "湿感", "备注"}

const (
	exportSheetName  = "屁屁记录"
	exportColWidth   = 15
	unknownTypeLabel = "未知"
)

var (
	durationLabels = map[string]string{
		"very_short": "极短", "short": "短", "medium": "中", "long": "长",
	}
	smellLabels = map[string]string{
		"mild": "轻微", "tolerable": "可忍受", "stinky": "臭", "extremely_stinky": "极臭",
	}
	temperatureLabels = map[string]string{"hot": "热", "cold": "冷"}
	moistureLabels    = map[string]string{"moist": "湿", "dry": "干"}
)

// ExportServiceProvider defines the interface for file exports.
type ExportServiceProvider interface {
	CSV(userID int64, dateFrom, dateTo string) ([]byte, error)
	Excel(userID int64, dateFrom, dateTo string) ([]byte, error)
}

// ExportService renders a user's filtered records as downloadable files.
type ExportService struct {
	db *sql.DB
}

// NewExportService creates a new ExportService.
func NewExportService(db *sql.DB) *ExportService {
	return &ExportService{db: db}
}

// rows fetches the user's records newest first, as display-label rows.
// Malformed date bounds are ignored, matching the analytics filter contract.
func (s *ExportService) rows(userID int64, dateFrom, dateTo string) ([][]string, error) {
	where := "r.user_id = ?"
	args := []any{userID}

	if dateFrom != "" {
		if from, err := timeutil.DateBoundary(dateFrom, false); err == nil {
			where += " AND r.timestamp >= ?"
			args = append(args, from)
		}
	}
	if dateTo != "" {
		if to, err := timeutil.DateBoundary(dateTo, true); err == nil {
			where += " AND r.timestamp <= ?"
			args = append(args, to)
		}
	}

	rows, err := s.db.Query(
		"SELECT r.timestamp, r.duration, t.name, r.smell_level, r.temperature, r.moisture, r.notes FROM fart_records r LEFT JOIN fart_types t ON r.type_id = t.id WHERE "+
			where+" ORDER BY r.timestamp DESC",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		var timestamp, duration, smell, temperature, moisture string
		var typeName, notes *string
		if err := rows.Scan(&timestamp, &duration, &typeName, &smell, &temperature, &moisture, &notes); err != nil {
			return nil, err
		}
		out = append(out, []string{
			timestamp,
			label(durationLabels, duration),
			derefOr(typeName, unknownTypeLabel),
			label(smellLabels, smell),
			label(temperatureLabels, temperature),
			label(moistureLabels, moisture),
			derefOr(notes, ""),
		})
	}
	return out, rows.Err()
}

// CSV renders the filtered records as UTF-8 text with a leading BOM. Every
// value is quoted with internal quotes doubled, the exact byte format the
// original exports used, which encoding/csv's minimal quoting cannot produce.
func (s *ExportService) CSV(userID int64, dateFrom, dateTo string) ([]byte, error) {
	records, err := s.rows(userID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(strings.Join(exportHeaders, ","))
	b.WriteByte('\n')

	for _, row := range records {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// Excel renders the filtered records as a single-sheet xlsx workbook.
func (s *ExportService) Excel(userID int64, dateFrom, dateTo string) ([]byte, error) {
	records, err := s.rows(userID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range records {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &cells); err != nil {
			return nil, err
		}
	}

	last, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheetName, "A", last, exportColWidth); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func label(labels map[string]string, value string) string {
	if l, ok := labels[value]; ok {
		return l
	}
	return value
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
