package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/usecase/qa"
)

func askCommand() *cli.Command {
	var (
		cfg       config
		role      string
		patientID string
		topK      int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "role",
			Aliases:     []string{"r"},
			Usage:       "Audience for the answer (patient or clinician)",
			Value:       string(model.RoleClinician),
			Sources:     cli.EnvVars("HFGUIDE_ROLE"),
			Destination: &role,
		},
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"id"},
			Usage:       "Patient record to ground the answer on",
			Sources:     cli.EnvVars("HFGUIDE_PATIENT_ID"),
			Destination: &patientID,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of guideline passages to retrieve",
			Value:       qa.DefaultTopK,
			Destination: &topK,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, indexFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer one question from the ingested guideline",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			question := c.Args().First()
			if question == "" {
				return goerr.New("question argument is required")
			}

			parsedRole, err := model.ParseRole(role)
			if err != nil {
				return err
			}

			uc, repo, err := cfg.newUseCase(ctx, topK)
			if err != nil {
				return err
			}
			defer repo.Close()

			out, err := uc.Ask(ctx, qa.AskInput{
				Role:      parsedRole,
				PatientID: model.PatientID(patientID),
				Question:  question,
				TopK:      int(topK),
			})
			if err != nil {
				if errors.Is(err, model.ErrPatientNotFound) {
					fmt.Fprintln(c.Root().Writer, "Patient not found. Please check the patient ID.")
					return nil
				}
				return err
			}

			fmt.Fprintln(c.Root().Writer, out.Answer)
			return nil
		},
	}
}
