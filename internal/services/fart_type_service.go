package services

import (
	"database/sql"
	"strings"

	"github.com/fartlog/fartlog-be/internal/models"
)

// FartTypeServiceProvider defines the interface for category services.
type FartTypeServiceProvider interface {
	List() ([]models.FartType, error)
	Create(name string) (models.FartType, error)
	Exists(id int64) (bool, error)
}

// FartTypeService manages the shared category registry.
type FartTypeService struct {
	db *sql.DB
}

// NewFartTypeService creates a new FartTypeService.
func NewFartTypeService(db *sql.DB) *FartTypeService {
	return &FartTypeService{db: db}
}

// List returns all categories, presets first, alphabetical within each group.
func (s *FartTypeService) List() ([]models.FartType, error) {
	rows, err := s.db.Query("SELECT id, name, is_preset FROM fart_types ORDER BY is_preset DESC, name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []models.FartType{}
	for rows.Next() {
		var ft models.FartType
		if err := rows.Scan(&ft.ID, &ft.Name, &ft.IsPreset); err != nil {
			return nil, err
		}
		types = append(types, ft)
	}
	return types, rows.Err()
}

// Create adds a user-defined category. Names are trimmed; exact duplicates
// conflict. New entries are never presets.
func (s *FartTypeService) Create(name string) (models.FartType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.FartType{}, errInvalidRequest("Missing name")
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM fart_types WHERE name = ?", name).Scan(&exists); err != nil {
		return models.FartType{}, err
	}
	if exists > 0 {
		return models.FartType{}, ErrTypeExists
	}

	res, err := s.db.Exec("INSERT INTO fart_types (name, is_preset) VALUES (?, 0)", name)
	if err != nil {
		return models.FartType{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.FartType{}, err
	}
	return models.FartType{ID: id, Name: name, IsPreset: false}, nil
}

// Exists reports whether a category id references a stored category.
func (s *FartTypeService) Exists(id int64) (bool, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM fart_types WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
