package services

import (
	"database/sql"
	"strings"

	"github.com/fartlog/fartlog-be/internal/models"
	"github.com/fartlog/fartlog-be/internal/timeutil"
)

// RecordInput carries the fields for creating a record. TypeID is a pointer
// so a missing id is distinguishable from id 0.
type RecordInput struct {
	Duration    string
	TypeID      *int64
	SmellLevel  string
	Temperature string
	Moisture    string
	Timestamp   string
	Notes       *string
}

// RecordUpdate is a partial update: nil fields are left untouched. Notes uses
// an explicit presence flag because null is a valid value for it.
type RecordUpdate struct {
	Timestamp   *string
	Duration    *string
	TypeID      *int64
	SmellLevel  *string
	Temperature *string
	Moisture    *string
	Notes       *string
	NotesSet    bool
}

// ListParams are the raw query parameters for listing records. Date bounds
// are unparsed; List validates them strictly.
type ListParams struct {
	Page     int
	PerPage  int
	DateFrom string
	DateTo   string
}

// ListResult is one page of records plus the pre-pagination total.
type ListResult struct {
	Items   []models.FartRecord `json:"items"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

// RecordServiceProvider defines the interface for record services. Every
// operation is scoped to the owning user; records of other users behave as if
// they do not exist.
type RecordServiceProvider interface {
	Create(userID int64, input RecordInput) (models.FartRecord, error)
	List(userID int64, params ListParams) (ListResult, error)
	Get(userID, recordID int64) (models.FartRecord, error)
	Update(userID, recordID int64, update RecordUpdate) (models.FartRecord, error)
	Delete(userID, recordID int64) error
}

// RecordService provides owner-scoped CRUD over fart records.
type RecordService struct {
	db *sql.DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *sql.DB) *RecordService {
	return &RecordService{db: db}
}

const recordColumns = `r.id, r.user_id, r.timestamp, r.duration, r.type_id, t.name, r.smell_level, r.temperature, r.moisture, r.notes`

const maxPerPage = 100

func scanRecord(row interface{ Scan(...any) error }) (models.FartRecord, error) {
	var rec models.FartRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Timestamp, &rec.Duration, &rec.TypeID,
		&rec.TypeName, &rec.SmellLevel, &rec.Temperature, &rec.Moisture, &rec.Notes)
	return rec, err
}

func validateEnum(field, value string, allowed map[string]bool) error {
	if !allowed[value] {
		return errInvalidEnum(field)
	}
	return nil
}

func (s *RecordService) typeExists(id int64) (bool, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM fart_types WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RecordService) validateTypeID(typeID *int64) (int64, error) {
	if typeID == nil {
		return 0, errInvalidType("Invalid type_id")
	}
	ok, err := s.typeExists(*typeID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errInvalidType("Unknown type_id")
	}
	return *typeID, nil
}

// Create validates and persists a new record for the user. An absent
// timestamp defaults to the current UTC time.
func (s *RecordService) Create(userID int64, input RecordInput) (models.FartRecord, error) {
	if input.Duration == "" || input.TypeID == nil || input.SmellLevel == "" ||
		input.Temperature == "" || input.Moisture == "" {
		return models.FartRecord{}, errInvalidRequest("Missing required fields")
	}

	if err := validateEnum("duration", input.Duration, models.AllowedDurations); err != nil {
		return models.FartRecord{}, err
	}
	if err := validateEnum("smell_level", input.SmellLevel, models.AllowedSmellLevels); err != nil {
		return models.FartRecord{}, err
	}
	if err := validateEnum("temperature", input.Temperature, models.AllowedTemperatures); err != nil {
		return models.FartRecord{}, err
	}
	if err := validateEnum("moisture", input.Moisture, models.AllowedMoistures); err != nil {
		return models.FartRecord{}, err
	}

	typeID, err := s.validateTypeID(input.TypeID)
	if err != nil {
		return models.FartRecord{}, err
	}

	timestamp := timeutil.Now()
	if ts := strings.TrimSpace(input.Timestamp); ts != "" {
		timestamp, err = timeutil.Normalize(ts)
		if err != nil {
			return models.FartRecord{}, errInvalidRequest("Invalid timestamp")
		}
	}

	res, err := s.db.Exec(
		"INSERT INTO fart_records (user_id, timestamp, duration, type_id, smell_level, temperature, moisture, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		userID, timestamp, input.Duration, typeID, input.SmellLevel, input.Temperature, input.Moisture, input.Notes,
	)
	if err != nil {
		return models.FartRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.FartRecord{}, err
	}
	return s.Get(userID, id)
}

// List returns one page of the user's records, newest first, optionally
// bounded by an inclusive timestamp range.
func (s *RecordService) List(userID int64, params ListParams) (ListResult, error) {
	if params.Page < 1 || params.PerPage < 1 {
		return ListResult{}, errInvalidRequest("Invalid pagination")
	}
	if params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}

	where := "r.user_id = ?"
	args := []any{userID}

	if params.DateFrom != "" {
		from, err := timeutil.DateBoundary(params.DateFrom, false)
		if err != nil {
			return ListResult{}, errInvalidRequest("Invalid date_from")
		}
		where += " AND r.timestamp >= ?"
		args = append(args, from)
	}
	if params.DateTo != "" {
		to, err := timeutil.DateBoundary(params.DateTo, true)
		if err != nil {
			return ListResult{}, errInvalidRequest("Invalid date_to")
		}
		where += " AND r.timestamp <= ?"
		args = append(args, to)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM fart_records r WHERE "+where, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	query := "SELECT " + recordColumns + " FROM fart_records r LEFT JOIN fart_types t ON r.type_id = t.id WHERE " +
		where + " ORDER BY r.timestamp DESC LIMIT ? OFFSET ?"
	args = append(args, params.PerPage, (params.Page-1)*params.PerPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	items := []models.FartRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total, Page: params.Page, PerPage: params.PerPage}, nil
}

// Get returns the record only if it belongs to the user; anything else is a
// NOT_FOUND so record ids of other users do not leak.
func (s *RecordService) Get(userID, recordID int64) (models.FartRecord, error) {
	row := s.db.QueryRow(
		"SELECT "+recordColumns+" FROM fart_records r LEFT JOIN fart_types t ON r.type_id = t.id WHERE r.id = ? AND r.user_id = ?",
		recordID, userID,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return models.FartRecord{}, ErrNotFound
	}
	if err != nil {
		return models.FartRecord{}, err
	}
	return rec, nil
}

// Update applies a partial update to an owned record. Only supplied fields
// are validated and changed.
func (s *RecordService) Update(userID, recordID int64, update RecordUpdate) (models.FartRecord, error) {
	rec, err := s.Get(userID, recordID)
	if err != nil {
		return models.FartRecord{}, err
	}

	if update.Timestamp != nil {
		normalized, err := timeutil.Normalize(*update.Timestamp)
		if err != nil {
			return models.FartRecord{}, errInvalidRequest("Invalid timestamp")
		}
		rec.Timestamp = normalized
	}
	if update.Duration != nil {
		if err := validateEnum("duration", *update.Duration, models.AllowedDurations); err != nil {
			return models.FartRecord{}, err
		}
		rec.Duration = *update.Duration
	}
	if update.TypeID != nil {
		typeID, err := s.validateTypeID(update.TypeID)
		if err != nil {
			return models.FartRecord{}, err
		}
		rec.TypeID = typeID
	}
	if update.SmellLevel != nil {
		if err := validateEnum("smell_level", *update.SmellLevel, models.AllowedSmellLevels); err != nil {
			return models.FartRecord{}, err
		}
		rec.SmellLevel = *update.SmellLevel
	}
	if update.Temperature != nil {
		if err := validateEnum("temperature", *update.Temperature, models.AllowedTemperatures); err != nil {
			return models.FartRecord{}, err
		}
		rec.Temperature = *update.Temperature
	}
	if update.Moisture != nil {
		if err := validateEnum("moisture", *update.Moisture, models.AllowedMoistures); err != nil {
			return models.FartRecord{}, err
		}
		rec.Moisture = *update.Moisture
	}
	if update.NotesSet {
		rec.Notes = update.Notes
	}

	_, err = s.db.Exec(
		"UPDATE fart_records SET timestamp = ?, duration = ?, type_id = ?, smell_level = ?, temperature = ?, moisture = ?, notes = ? WHERE id = ? AND user_id = ?",
		rec.Timestamp, rec.Duration, rec.TypeID, rec.SmellLevel, rec.Temperature, rec.Moisture, rec.Notes, recordID, userID,
	)
	if err != nil {
		return models.FartRecord{}, err
	}
	return s.Get(userID, recordID)
}

// Delete removes an owned record. Deleting twice reports NOT_FOUND the second
// time.
func (s *RecordService) Delete(userID, recordID int64) error {
	res, err := s.db.Exec("DELETE FROM fart_records WHERE id = ? AND user_id = ?", recordID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
