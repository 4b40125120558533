package entity

import "github.com/google/uuid"

// ReconcileReport lists every divergence found between the object store, the
// primary records, the time-ordered index and the counters.
type ReconcileReport struct {
	Records          int         `json:"records"`
	IndexEntries     int         `json:"indexEntries"`
	Objects          int         `json:"objects"`
	DanglingIndex    []uuid.UUID `json:"danglingIndex"`
	UnindexedRecords []uuid.UUID `json:"unindexedRecords"`
	OrphanObjects    []string    `json:"orphanObjects"`
	RemovedObjects   []string    `json:"removedObjects"`
	CountersBefore   Counters    `json:"countersBefore"`
	CountersActual   Counters    `json:"countersActual"`
	Repaired         bool        `json:"repaired"`
}

func (r *ReconcileReport) CountersDrifted() bool {
	return r.CountersBefore != r.CountersActual
}

func (r *ReconcileReport) Clean() bool {
	return len(r.DanglingIndex) == 0 &&
		len(r.UnindexedRecords) == 0 &&
		len(r.OrphanObjects) == 0 &&
		!r.CountersDrifted()
}
