package qa

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/utils/logging"
)

//go:embed prompt/patient.md
var patientPrompt string

//go:embed prompt/clinician.md
var clinicianPrompt string

//go:embed prompt/question.md
var questionPromptRaw string

var questionTmpl = template.Must(template.New("question").Parse(questionPromptRaw))

// GenerateInput is everything the answer generator needs: the audience role,
// the rendered patient block, the formatted guideline passages, and the raw
// question.
type GenerateInput struct {
	Role     model.Role
	Context  string
	Passages string
	Question string
}

// Generate produces the final answer text. Inference failures degrade to an
// explanatory answer string instead of an error so interactive sessions keep
// running; only template and role problems are returned as errors.
func (u *UseCase) Generate(ctx context.Context, input GenerateInput) (string, error) {
	system := patientPrompt
	if input.Role == model.RoleClinician {
		system = clinicianPrompt
	}

	var buf bytes.Buffer
	if err := questionTmpl.Execute(&buf, input); err != nil {
		return "", goerr.Wrap(err, "failed to render question prompt")
	}

	// Thinking budget zero: the role prompts forbid chain-of-thought in the
	// output, and we do not pay for it either.
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := callWithTimeout(ctx, u.inferenceTimeout, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return u.gemini.GenerateContent(ctx, contents, config)
	})
	if err != nil {
		logging.From(ctx).Error("inference failed", "error",
			goerr.Wrap(err, "generation failed", goerr.V("role", input.Role)))
		return degradedAnswer(err), nil
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		logging.From(ctx).Error("inference returned empty response")
		return degradedAnswer(model.ErrInference), nil
	}

	return answer, nil
}

// degradedAnswer is the user-visible text shown when inference fails. The
// session stays alive; the cause is surfaced inline.
func degradedAnswer(cause error) string {
	return "Error generating response: " + cause.Error()
}
