package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a named copy of a projected model together with the assumption
// set and profit flag it was computed against. Records are deep copies: later
// model mutations never alter a saved snapshot.
type Snapshot struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	CreatedAt   time.Time         `json:"created_at"`
	ProfitMode  bool              `json:"profit_mode"`
	Assumptions AssumptionSet     `json:"assumptions"`
	Records     []ProjectedRecord `json:"records"`
}
