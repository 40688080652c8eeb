package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/model"
)

// MemoryRepo is an in-memory patient record store for tests and local runs.
type MemoryRepo struct {
	mu       sync.RWMutex
	patients map[model.PatientID]*model.PatientContext
}

func NewMemory() *MemoryRepo {
	return &MemoryRepo{
		patients: make(map[model.PatientID]*model.PatientContext),
	}
}

func (r *MemoryRepo) GetPatient(ctx context.Context, id model.PatientID) (*model.PatientContext, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patient, ok := r.patients[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrPatientNotFound, "no such record", goerr.V("patient_id", id))
	}
	return patient, nil
}

func (r *MemoryRepo) PutPatient(ctx context.Context, id model.PatientID, patient *model.PatientContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[id] = patient
	return nil
}

func (r *MemoryRepo) ListPatientIDs(ctx context.Context) ([]model.PatientID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]model.PatientID, 0, len(r.patients))
	for id := range r.patients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *MemoryRepo) Close() error {
	return nil
}
