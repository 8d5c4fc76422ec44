// Package store holds the working model: an ordered, NPI-unique collection
// of projected physician records plus the assumptions they were last
// computed against.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/model"
)

// Store is not safe for concurrent use. All mutation happens from a single
// goroutine (the CLI command flow, or one serialized request handler).
type Store struct {
	records     []model.ProjectedRecord
	index       map[string]int // NPI -> position in records
	assumptions model.AssumptionSet
	profitMode  bool
}

// New creates an empty model computed against the given assumptions.
func New(a model.AssumptionSet, profitMode bool) *Store {
	return &Store{
		index:       make(map[string]int),
		assumptions: a,
		profitMode:  profitMode,
	}
}

// Add projects the record under the current assumptions and appends it.
// A record whose NPI is already present is silently ignored; the return
// value reports whether the record was added.
func (s *Store) Add(rec model.PhysicianRecord) bool {
	if _, ok := s.index[rec.NPI]; ok {
		return false
	}
	s.index[rec.NPI] = len(s.records)
	s.records = append(s.records, funnel.Project(rec, s.assumptions, s.profitMode))
	return true
}

// Remove deletes the record with the given NPI, preserving the order of the
// rest. Removing an absent NPI is a no-op.
func (s *Store) Remove(npi string) bool {
	pos, ok := s.index[npi]
	if !ok {
		return false
	}
	s.records = append(s.records[:pos], s.records[pos+1:]...)
	delete(s.index, npi)
	for i := pos; i < len(s.records); i++ {
		s.index[s.records[i].NPI] = i
	}
	return true
}

// ReplaceAll discards the current contents and loads the given records,
// projecting each independently. Duplicate NPIs in the input keep the first
// occurrence.
func (s *Store) ReplaceAll(recs []model.PhysicianRecord) {
	s.records = s.records[:0]
	s.index = make(map[string]int, len(recs))
	for _, rec := range recs {
		s.Add(rec)
	}
}

// SetAssumptions replaces the assumption set and reprojects every record.
func (s *Store) SetAssumptions(a model.AssumptionSet) {
	s.assumptions = a
	s.recomputeAll()
}

// SetProfitMode toggles profit computation and reprojects every record.
func (s *Store) SetProfitMode(on bool) {
	s.profitMode = on
	s.recomputeAll()
}

// recomputeAll reprojects every record from its retained raw PhysicianRecord.
// Deriving from raw inputs rather than prior output keeps recomputation
// non-compounding: running it twice with the same assumptions is a no-op.
func (s *Store) recomputeAll() {
	for i := range s.records {
		s.records[i] = funnel.Project(s.records[i].PhysicianRecord, s.assumptions, s.profitMode)
	}
}

// Records returns a deep copy of the model contents in model order.
func (s *Store) Records() []model.ProjectedRecord {
	return cloneRecords(s.records)
}

// Totals aggregates the current contents.
func (s *Store) Totals() model.Totals {
	return funnel.Aggregate(s.records)
}

// Len reports the number of records in the model.
func (s *Store) Len() int { return len(s.records) }

// Assumptions returns the assumption set the model was last computed against.
func (s *Store) Assumptions() model.AssumptionSet { return s.assumptions }

// ProfitMode reports whether profit computation is enabled.
func (s *Store) ProfitMode() bool { return s.profitMode }

// Snapshot produces a named deep copy of the model and its assumptions.
// Mutating the store afterwards never alters the snapshot.
func (s *Store) Snapshot(name string) model.Snapshot {
	return model.Snapshot{
		ID:          uuid.New(),
		Name:        name,
		CreatedAt:   time.Now().UTC(),
		ProfitMode:  s.profitMode,
		Assumptions: s.assumptions,
		Records:     cloneRecords(s.records),
	}
}

// Restore replaces the model contents and assumptions with a snapshot's.
// The snapshot's derived fields are taken as-is; call SetAssumptions to
// reproject under different assumptions.
func (s *Store) Restore(snap model.Snapshot) {
	s.assumptions = snap.Assumptions
	s.profitMode = snap.ProfitMode
	s.records = cloneRecords(snap.Records)
	s.index = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.NPI] = i
	}
}

// cloneRecords copies records including their pointer-valued fields, so the
// copy shares no memory with the source.
func cloneRecords(records []model.ProjectedRecord) []model.ProjectedRecord {
	out := make([]model.ProjectedRecord, len(records))
	for i, r := range records {
		out[i] = r
		if r.PercentIncrease != nil {
			v := *r.PercentIncrease
			out[i].PercentIncrease = &v
		}
		if r.Profit != nil {
			v := *r.Profit
			out[i].Profit = &v
		}
	}
	return out
}
