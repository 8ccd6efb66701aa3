package services

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/fartlog/fartlog-be/internal/timeutil"
)

// AnalyticsFilter carries the raw, optional filter parameters shared by all
// aggregations. Unlike record listing, malformed values are silently ignored
// here; filters that do parse compose by AND.
type AnalyticsFilter struct {
	DateFrom string
	DateTo   string
	Days     string
	Weeks    string
}

// DailyCounts holds per-calendar-day totals as parallel arrays, ascending.
type DailyCounts struct {
	Dates  []string `json:"dates"`
	Counts []int    `json:"counts"`
}

// WeeklyCounts holds per-week totals keyed by SQLite's %Y-%W labels.
type WeeklyCounts struct {
	Weeks  []string `json:"weeks"`
	Counts []int    `json:"counts"`
}

// NameValue is one slice of a distribution.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// SmellDistribution holds smell-level totals as parallel arrays.
type SmellDistribution struct {
	Categories []string `json:"categories"`
	Values     []int    `json:"values"`
}

// CrossPoint is one record projected onto the duration/smell rank plane for
// scatter rendering.
type CrossPoint struct {
	Value [2]int    `json:"value"`
	Meta  CrossMeta `json:"meta"`
}

// CrossMeta carries the raw enum values behind a CrossPoint.
type CrossMeta struct {
	Smell       string `json:"smell"`
	Duration    string `json:"duration"`
	Temperature string `json:"temperature"`
	Moisture    string `json:"moisture"`
}

var (
	smellRanks    = map[string]int{"mild": 1, "tolerable": 2, "stinky": 3, "extremely_stinky": 4}
	durationRanks = map[string]int{"very_short": 1, "short": 2, "medium": 3, "long": 4}
)

// AnalyticsServiceProvider defines the interface for the aggregation queries.
type AnalyticsServiceProvider interface {
	DailyCount(userID int64, filter AnalyticsFilter) (DailyCounts, error)
	WeeklyCount(userID int64, filter AnalyticsFilter) (WeeklyCounts, error)
	TypeDistribution(userID int64, filter AnalyticsFilter) ([]NameValue, error)
	SmellDistribution(userID int64, filter AnalyticsFilter) (SmellDistribution, error)
	DurationDistribution(userID int64, filter AnalyticsFilter) ([]NameValue, error)
	HourlyHeatmap(userID int64, filter AnalyticsFilter) ([][3]int, error)
	CrossAnalysis(userID int64, filter AnalyticsFilter) ([]CrossPoint, error)
}

// AnalyticsService runs read-only aggregations over a user's records.
type AnalyticsService struct {
	db *sql.DB
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(db *sql.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func buildFilter(userID int64, f AnalyticsFilter) (string, []any) {
	where := "user_id = ?"
	args := []any{userID}

	if f.DateFrom != "" {
		if from, err := timeutil.DateBoundary(f.DateFrom, false); err == nil {
			where += " AND timestamp >= ?"
			args = append(args, from)
		}
	}
	if f.DateTo != "" {
		if to, err := timeutil.DateBoundary(f.DateTo, true); err == nil {
			where += " AND timestamp <= ?"
			args = append(args, to)
		}
	}
	if f.Days != "" {
		if n, err := strconv.Atoi(f.Days); err == nil {
			where += " AND timestamp >= ?"
			args = append(args, timeutil.Format(time.Now().AddDate(0, 0, -n)))
		}
	}
	if f.Weeks != "" {
		if n, err := strconv.Atoi(f.Weeks); err == nil {
			where += " AND timestamp >= ?"
			args = append(args, timeutil.Format(time.Now().AddDate(0, 0, -7*n)))
		}
	}
	return where, args
}

// DailyCount groups the user's records by calendar date.
func (s *AnalyticsService) DailyCount(userID int64, filter AnalyticsFilter) (DailyCounts, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT substr(timestamp, 1, 10) AS date, COUNT(id) FROM fart_records WHERE "+where+" GROUP BY date ORDER BY date",
		args...,
	)
	if err != nil {
		return DailyCounts{}, err
	}
	defer rows.Close()

	out := DailyCounts{Dates: []string{}, Counts: []int{}}
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return DailyCounts{}, err
		}
		out.Dates = append(out.Dates, date)
		out.Counts = append(out.Counts, count)
	}
	return out, rows.Err()
}

// WeeklyCount groups by SQLite's year-week label. The %W numbering is kept
// as-is; relabeling would shift every week the frontend renders.
func (s *AnalyticsService) WeeklyCount(userID int64, filter AnalyticsFilter) (WeeklyCounts, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT strftime('%Y-%W', timestamp) AS week, COUNT(id) FROM fart_records WHERE "+where+" GROUP BY week ORDER BY week",
		args...,
	)
	if err != nil {
		return WeeklyCounts{}, err
	}
	defer rows.Close()

	out := WeeklyCounts{Weeks: []string{}, Counts: []int{}}
	for rows.Next() {
		var week string
		var count int
		if err := rows.Scan(&week, &count); err != nil {
			return WeeklyCounts{}, err
		}
		out.Weeks = append(out.Weeks, week)
		out.Counts = append(out.Counts, count)
	}
	return out, rows.Err()
}

// TypeDistribution counts records per category name.
func (s *AnalyticsService) TypeDistribution(userID int64, filter AnalyticsFilter) ([]NameValue, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT t.name, COUNT(r.id) FROM fart_records r JOIN fart_types t ON r.type_id = t.id WHERE r."+where+" GROUP BY t.name",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNameValues(rows)
}

// SmellDistribution counts records per smell level actually present.
func (s *AnalyticsService) SmellDistribution(userID int64, filter AnalyticsFilter) (SmellDistribution, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT smell_level, COUNT(id) FROM fart_records WHERE "+where+" GROUP BY smell_level",
		args...,
	)
	if err != nil {
		return SmellDistribution{}, err
	}
	defer rows.Close()

	out := SmellDistribution{Categories: []string{}, Values: []int{}}
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return SmellDistribution{}, err
		}
		out.Categories = append(out.Categories, level)
		out.Values = append(out.Values, count)
	}
	return out, rows.Err()
}

// DurationDistribution counts records per duration value actually present.
func (s *AnalyticsService) DurationDistribution(userID int64, filter AnalyticsFilter) ([]NameValue, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT duration, COUNT(id) FROM fart_records WHERE "+where+" GROUP BY duration",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNameValues(rows)
}

// HourlyHeatmap buckets records by (hour of day, day of week), day 0 being
// Sunday, one [hour, dow, count] triple per non-empty bucket.
func (s *AnalyticsService) HourlyHeatmap(userID int64, filter AnalyticsFilter) ([][3]int, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT CAST(strftime('%H', timestamp) AS INTEGER) AS hour, CAST(strftime('%w', timestamp) AS INTEGER) AS dow, COUNT(id) FROM fart_records WHERE "+
			where+" GROUP BY dow, hour ORDER BY dow, hour",
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := [][3]int{}
	for rows.Next() {
		var hour, dow, count int
		if err := rows.Scan(&hour, &dow, &count); err != nil {
			return nil, err
		}
		data = append(data, [3]int{hour, dow, count})
	}
	return data, rows.Err()
}

// CrossAnalysis projects every matching record onto duration/smell ranks
// (1..4; 0 for an unrecognized value) for 2-D visualization.
func (s *AnalyticsService) CrossAnalysis(userID int64, filter AnalyticsFilter) ([]CrossPoint, error) {
	where, args := buildFilter(userID, filter)
	rows, err := s.db.Query(
		"SELECT smell_level, duration, temperature, moisture FROM fart_records WHERE "+where,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []CrossPoint{}
	for rows.Next() {
		var meta CrossMeta
		if err := rows.Scan(&meta.Smell, &meta.Duration, &meta.Temperature, &meta.Moisture); err != nil {
			return nil, err
		}
		points = append(points, CrossPoint{
			Value: [2]int{durationRanks[meta.Duration], smellRanks[meta.Smell]},
			Meta:  meta,
		})
	}
	return points, rows.Err()
}

func scanNameValues(rows *sql.Rows) ([]NameValue, error) {
	out := []NameValue{}
	for rows.Next() {
		var nv NameValue
		if err := rows.Scan(&nv.Name, &nv.Value); err != nil {
			return nil, err
		}
		out = append(out, nv)
	}
	return out, rows.Err()
}
