package qa

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/utils/logging"
)

// AskInput is one question against the guideline index. PatientID may be
// empty, in which case the answer is grounded on the passages alone.
type AskInput struct {
	Role      model.Role
	PatientID model.PatientID
	Question  string
	TopK      int
}

// AskOutput carries the answer plus the retrieval evidence it was grounded on.
type AskOutput struct {
	RequestID string
	Answer    string
	Results   []*model.RetrievalResult
}

// Ask runs the full pipeline for one question. The patient record is resolved
// first: an unknown patient id fails the request before any embedding or
// model call is made.
func (u *UseCase) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	if err := input.Role.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, goerr.New("question must not be empty")
	}

	requestID := uuid.New().String()
	logger := logging.From(ctx).With("request_id", requestID, "role", input.Role)
	ctx = logging.With(ctx, logger)

	var patient *model.PatientContext
	if input.PatientID != "" {
		var err error
		patient, err = u.repo.GetPatient(ctx, input.PatientID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve patient", goerr.V("patient_id", input.PatientID))
		}
	}

	results, err := u.Retrieve(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, err
	}
	logger.Info("retrieved guideline passages", "count", len(results))

	answer, err := u.Generate(ctx, GenerateInput{
		Role:     input.Role,
		Context:  BuildContext(input.Role, patient),
		Passages: FormatPassages(results),
		Question: input.Question,
	})
	if err != nil {
		return nil, err
	}

	return &AskOutput{
		RequestID: requestID,
		Answer:    answer,
		Results:   results,
	}, nil
}
