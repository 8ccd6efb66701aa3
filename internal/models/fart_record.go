package models

// FartRecord is a single logged occurrence, owned by exactly one user.
// Timestamp is an ISO-8601 UTC string with a literal "Z" suffix; the fixed
// width keeps lexicographic comparison equivalent to chronological order.
type FartRecord struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"-"`
	Timestamp   string  `json:"timestamp"`
	Duration    string  `json:"duration"`
	TypeID      int64   `json:"type_id"`
	TypeName    *string `json:"type_name"`
	SmellLevel  string  `json:"smell_level"`
	Temperature string  `json:"temperature"`
	Moisture    string  `json:"moisture"`
	Notes       *string `json:"notes"`
}

// Allowed values for the four enumerated attributes. These mirror the CHECK
// constraints in the schema.
var (
	AllowedDurations = map[string]bool{
		"very_short": true, "short": true, "medium": true, "long": true,
	}
	AllowedSmellLevels = map[string]bool{
		"mild": true, "tolerable": true, "stinky": true, "extremely_stinky": true,
	}
	AllowedTemperatures = map[string]bool{
		"hot": true, "cold": true,
	}
	AllowedMoistures = map[string]bool{
		"moist": true, "dry": true,
	}
)
