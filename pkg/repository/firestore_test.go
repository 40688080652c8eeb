package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/repository"
)

func setupFirestore(t *testing.T) repository.Repository {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.NewFirestore(context.Background(), projectID, databaseID)
	gt.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestFirestoreRoundTrip(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	id := model.PatientID(fmt.Sprintf("test-%d", rand.Int63()))
	age := 64
	lvef := 28.0
	patient := &model.PatientContext{
		Name:          "Test Patient",
		Age:           &age,
		Sex:           "female",
		HFType:        "HFrEF",
		LVEF:          &lvef,
		Symptoms:      []model.Symptom{{Name: "Dyspnea", Severity: 3, Duration: "2 weeks"}},
		Comorbidities: []string{"CKD", "Atrial fibrillation"},
		Medications:   []string{"Sacubitril/valsartan 49/51 mg"},
	}

	gt.NoError(t, repo.PutPatient(ctx, id, patient))

	retrieved, err := repo.GetPatient(ctx, id)
	gt.NoError(t, err)
	gt.V(t, retrieved).NotNil()
	gt.Equal(t, retrieved.Name, "Test Patient")
	gt.Equal(t, retrieved.HFType, "HFrEF")
	gt.V(t, retrieved.LVEF).NotNil()
	gt.Equal(t, *retrieved.LVEF, 28.0)
	gt.A(t, retrieved.Symptoms).Length(1)

	ids, err := repo.ListPatientIDs(ctx)
	gt.NoError(t, err)
	gt.A(t, ids).Longer(0)
}
