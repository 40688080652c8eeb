package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/repository"
	"github.com/hfguide/hfguide/pkg/usecase/qa"
)

// Server exposes the QA pipeline over the Model Context Protocol on stdio, so
// agent hosts can ask guideline questions and browse patient records as tools.
type Server struct {
	uc   *qa.UseCase
	repo repository.Repository
}

func New(uc *qa.UseCase, repo repository.Repository) *Server {
	return &Server{uc: uc, repo: repo}
}

// Run serves on stdin/stdout until the context is cancelled or the host
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hfguide",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_guideline",
		Description: "Answer a heart failure question from the ingested guideline, optionally grounded on a stored patient record",
		InputSchema: askGuidelineSchema(),
	}, s.askGuideline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_patients",
		Description: "List the ids of stored patient records",
	}, s.listPatients)

	return server.Run(ctx, &mcp.StdioTransport{})
}

type askGuidelineParams struct {
	Question  string `json:"question"`
	Role      string `json:"role,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
}

// askGuidelineSchema is declared explicitly to pin the role enum; struct tag
// inference cannot express it.
func askGuidelineSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question": {
				Type:        "string",
				Description: "The question to answer from the guideline",
			},
			"role": {
				Type:        "string",
				Enum:        []any{string(model.RolePatient), string(model.RoleClinician)},
				Description: "Audience for the answer, defaults to clinician",
			},
			"patient_id": {
				Type:        "string",
				Description: "Optional id of a stored patient record to ground the answer on",
			},
		},
		Required: []string{"question"},
	}
}

func (s *Server) askGuideline(ctx context.Context, req *mcp.CallToolRequest, params *askGuidelineParams) (*mcp.CallToolResult, any, error) {
	role := model.RoleClinician
	if params.Role != "" {
		var err error
		role, err = model.ParseRole(params.Role)
		if err != nil {
			return nil, nil, err
		}
	}

	out, err := s.uc.Ask(ctx, qa.AskInput{
		Role:      role,
		PatientID: model.PatientID(params.PatientID),
		Question:  params.Question,
	})
	if err != nil {
		if errors.Is(err, model.ErrPatientNotFound) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: "Patient not found. Please check the patient ID."},
				},
			}, nil, nil
		}
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: out.Answer},
		},
	}, nil, nil
}

type listPatientsParams struct{}

func (s *Server) listPatients(ctx context.Context, req *mcp.CallToolRequest, params *listPatientsParams) (*mcp.CallToolResult, any, error) {
	ids, err := s.repo.ListPatientIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	text := "No patient records stored."
	if len(ids) > 0 {
		lines := make([]string, len(ids))
		for i, id := range ids {
			lines[i] = string(id)
		}
		text = strings.Join(lines, "\n")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}
