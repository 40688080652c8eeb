package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hfguide/hfguide/pkg/model"
)

const patientCollection = "patients"

type firestoreRepo struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed patient record store.
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) GetPatient(ctx context.Context, id model.PatientID) (*model.PatientContext, error) {
	doc, err := r.client.Collection(patientCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrPatientNotFound, "no such record", goerr.V("patient_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V("patient_id", id))
	}

	var patient model.PatientContext
	if err := doc.DataTo(&patient); err != nil {
		return nil, goerr.Wrap(err, "failed to decode patient record", goerr.V("patient_id", id))
	}

	return &patient, nil
}

func (r *firestoreRepo) PutPatient(ctx context.Context, id model.PatientID, patient *model.PatientContext) error {
	if _, err := r.client.Collection(patientCollection).Doc(string(id)).Set(ctx, patient); err != nil {
		return goerr.Wrap(err, "failed to put patient", goerr.V("patient_id", id))
	}
	return nil
}

func (r *firestoreRepo) ListPatientIDs(ctx context.Context) ([]model.PatientID, error) {
	iter := r.client.Collection(patientCollection).DocumentRefs(ctx)

	var ids []model.PatientID
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list patients")
		}
		ids = append(ids, model.PatientID(ref.ID))
	}

	return ids, nil
}

func (r *firestoreRepo) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
