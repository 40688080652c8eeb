package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hfguide/hfguide/pkg/model"
	"github.com/hfguide/hfguide/pkg/usecase/qa"
	"github.com/hfguide/hfguide/pkg/utils/logging"
)

func chatCommand() *cli.Command {
	var (
		cfg              config
		role             string
		patientID        string
		topK             int64
		transcriptBucket string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "role",
			Aliases:     []string{"r"},
			Usage:       "Audience for the answers (patient or clinician)",
			Value:       string(model.RoleClinician),
			Sources:     cli.EnvVars("HFGUIDE_ROLE"),
			Destination: &role,
		},
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"id"},
			Usage:       "Patient record to ground the answers on",
			Sources:     cli.EnvVars("HFGUIDE_PATIENT_ID"),
			Destination: &patientID,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of guideline passages to retrieve per question",
			Value:       qa.DefaultTopK,
			Destination: &topK,
		},
		&cli.StringFlag{
			Name:        "transcript-bucket",
			Usage:       "Cloud Storage bucket for session transcripts, disabled when empty",
			Sources:     cli.EnvVars("HFGUIDE_TRANSCRIPT_BUCKET"),
			Destination: &transcriptBucket,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, indexFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive question answering session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
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

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize prompt")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started (role: %s). Type 'exit' to quit.\n", parsedRole)

			var transcript strings.Builder
			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				question := strings.TrimSpace(line)
				if question == "" {
					continue
				}
				if question == "exit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " searching guideline..."
				sp.Start()

				out, err := uc.Ask(ctx, qa.AskInput{
					Role:      parsedRole,
					PatientID: model.PatientID(patientID),
					Question:  question,
					TopK:      int(topK),
				})
				sp.Stop()

				if err != nil {
					if errors.Is(err, model.ErrPatientNotFound) {
						fmt.Fprintln(c.Root().Writer, "Patient not found. Please check the patient ID.")
						continue
					}
					return err
				}

				fmt.Fprintf(c.Root().Writer, "%s\n\n", out.Answer)
				fmt.Fprintf(&transcript, "Q: %s\n\nA: %s\n\n", question, out.Answer)
			}

			if transcriptBucket != "" && transcript.Len() > 0 {
				if err := uploadTranscript(ctx, &cfg, transcriptBucket, transcript.String()); err != nil {
					logging.From(ctx).Warn("failed to upload transcript", "error", err)
				}
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}

func uploadTranscript(ctx context.Context, cfg *config, bucket, body string) error {
	storage, err := cfg.newStorage(ctx, bucket)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("transcripts/%s.txt", time.Now().UTC().Format("20060102-150405"))
	writer, err := storage.Put(ctx, key)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(writer, body); err != nil {
		writer.Close()
		return goerr.Wrap(err, "failed to write transcript", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize transcript", goerr.V("key", key))
	}

	logging.From(ctx).Info("transcript uploaded", "bucket", bucket, "key", key)
	return nil
}
