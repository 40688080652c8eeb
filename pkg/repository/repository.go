package repository

import (
	"context"

	"github.com/hfguide/hfguide/pkg/model"
)

// Repository is the patient record store. The QA pipeline only reads from it;
// writes happen through the patient import command.
type Repository interface {
	// GetPatient retrieves a patient context by ID. A miss returns
	// model.ErrPatientNotFound.
	GetPatient(ctx context.Context, id model.PatientID) (*model.PatientContext, error)

	// PutPatient stores a patient context under the given ID, replacing any
	// existing record.
	PutPatient(ctx context.Context, id model.PatientID, patient *model.PatientContext) error

	// ListPatientIDs returns the IDs of all stored patients.
	ListPatientIDs(ctx context.Context) ([]model.PatientID, error)

	Close() error
}
