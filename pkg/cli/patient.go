package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hfguide/hfguide/pkg/model"
)

func patientCommand() *cli.Command {
	return &cli.Command{
		Name:  "patient",
		Usage: "Manage patient records",
		Commands: []*cli.Command{
			patientNewCommand(),
			patientShowCommand(),
			patientListCommand(),
		},
	}
}

func patientNewCommand() *cli.Command {
	var (
		cfg       config
		inputPath string
		patientID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the patient record",
			Required:    true,
			Destination: &inputPath,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Patient ID, generated when omitted",
			Destination: &patientID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)

	return &cli.Command{
		Name:  "new",
		Usage: "Store a patient record from JSON input",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}

			var patient model.PatientContext
			if err := json.Unmarshal(data, &patient); err != nil {
				return goerr.Wrap(err, "failed to parse patient record", goerr.V("path", inputPath))
			}

			if patientID == "" {
				patientID = uuid.New().String()
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.PutPatient(ctx, model.PatientID(patientID), &patient); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Stored patient record: %s\n", patientID)
			return nil
		},
	}
}

func patientShowCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, repoFlags(&cfg)...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Print a patient record as JSON",
		ArgsUsage: "<patient-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			id := c.Args().First()
			if id == "" {
				return goerr.New("patient-id argument is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			patient, err := repo.GetPatient(ctx, model.PatientID(id))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(patient, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to encode patient record")
			}

			fmt.Fprintln(c.Root().Writer, string(out))
			return nil
		},
	}
}

func patientListCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, repoFlags(&cfg)...)

	return &cli.Command{
		Name:  "list",
		Usage: "List stored patient record IDs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			ids, err := repo.ListPatientIDs(ctx)
			if err != nil {
				return err
			}

			for _, id := range ids {
				fmt.Fprintln(c.Root().Writer, id)
			}
			return nil
		},
	}
}
