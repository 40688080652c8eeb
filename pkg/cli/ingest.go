package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hfguide/hfguide/pkg/adapter"
	"github.com/hfguide/hfguide/pkg/usecase/ingest"
)

func ingestCommand() *cli.Command {
	var (
		cfg          config
		sourcePath   string
		tablesPath   string
		maxChunkSize int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Aliases:     []string{"s"},
			Usage:       "Guideline text, local path or gs:// URI",
			Required:    true,
			Destination: &sourcePath,
		},
		&cli.StringFlag{
			Name:        "tables",
			Aliases:     []string{"t"},
			Usage:       "JSON array of extracted table texts, local path or gs:// URI",
			Destination: &tablesPath,
		},
		&cli.IntFlag{
			Name:        "max-chunk-size",
			Usage:       "Character budget per prose chunk",
			Value:       ingest.DefaultMaxChunkSize,
			Destination: &maxChunkSize,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, indexFlags(&cfg)...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Rebuild the guideline index from a source document",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			prose, err := readDocument(ctx, &cfg, sourcePath)
			if err != nil {
				return err
			}

			var tables []string
			if tablesPath != "" {
				data, err := readDocument(ctx, &cfg, tablesPath)
				if err != nil {
					return err
				}
				if err := json.Unmarshal([]byte(data), &tables); err != nil {
					return goerr.Wrap(err, "failed to parse tables file", goerr.V("path", tablesPath))
				}
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			index, err := cfg.newIndex(ctx)
			if err != nil {
				return err
			}
			defer index.Close()

			pipeline := ingest.New(gemini, index,
				ingest.WithChunker(ingest.NewChunker(int(maxChunkSize))),
			)

			stats, err := pipeline.Run(ctx, ingest.Source{
				Prose:  prose,
				Tables: tables,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Ingested %d prose chunks and %d table chunks\n",
				stats.ProseChunks, stats.TableChunks)
			return nil
		},
	}
}

// readDocument loads a document from a local path or a gs:// URI.
func readDocument(ctx context.Context, cfg *config, path string) (string, error) {
	if bucket, object, ok := adapter.ParseGSURI(path); ok {
		storage, err := cfg.newStorage(ctx, bucket)
		if err != nil {
			return "", err
		}

		reader, err := storage.Get(ctx, object)
		if err != nil {
			return "", err
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read object", goerr.V("uri", path))
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return string(data), nil
}
