package models

// FartType is a shared event category. The five preset types are seeded at
// startup; user-created ones are never marked preset.
type FartType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsPreset bool   `json:"is_preset"`
}
