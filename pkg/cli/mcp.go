package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hfguide/hfguide/pkg/service/mcp"
	"github.com/hfguide/hfguide/pkg/usecase/qa"
)

func mcpCommand() *cli.Command {
	var (
		cfg  config
		topK int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of guideline passages to retrieve per question",
			Value:       qa.DefaultTopK,
			Destination: &topK,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, repoFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, indexFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the QA pipeline as an MCP server on stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.prepare(ctx)
			if err != nil {
				return err
			}

			uc, repo, err := cfg.newUseCase(ctx, topK)
			if err != nil {
				return err
			}
			defer repo.Close()

			return mcp.New(uc, repo).Run(ctx)
		},
	}
}
