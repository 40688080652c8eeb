package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/repository"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	_, err := repo.GetPatient(ctx, "p-1")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrPatientNotFound))

	age := 70
	gt.NoError(t, repo.PutPatient(ctx, "p-1", &model.PatientContext{Name: "Jane Roe", Age: &age}))
	gt.NoError(t, repo.PutPatient(ctx, "p-0", &model.PatientContext{Name: "John Doe"}))

	patient, err := repo.GetPatient(ctx, "p-1")
	gt.NoError(t, err)
	gt.Equal(t, patient.Name, "Jane Roe")

	ids, err := repo.ListPatientIDs(ctx)
	gt.NoError(t, err)
	gt.Equal(t, ids, []model.PatientID{"p-0", "p-1"})

	gt.NoError(t, repo.Close())
}
