package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gumcp/gumcp-go/internal/logs"
)

func newCallCommand() *cobra.Command {
	var jsonArgs string

	cmd := &cobra.Command{
		Use:   "call <connector> <tool>",
		Short: "Invoke one connector tool and print the result",
		Long: `Invokes a single tool through the dispatch layer, exactly as an MCP
client would, and prints the provider response as JSON. Useful for
verifying credentials and tool behavior without an agent attached.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, tool := args[0], args[1]

			toolArgs := map[string]any{}
			if jsonArgs != "" {
				if err := json.Unmarshal([]byte(jsonArgs), &toolArgs); err != nil {
					return fmt.Errorf("invalid --json-args: %w", err)
				}
			}

			cfg, err := loadConfigWithFlags()
			if err != nil {
				return err
			}
			logger, err := logs.SetupCommandLogger(false, logLevel)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			rt, err := newRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ToolTimeout)
			defer cancel()

			result, err := rt.dispatcher.Invoke(ctx, provider, tool, cfg.UserID, toolArgs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&jsonArgs, "json-args", "", "Tool arguments as a JSON object")
	return cmd
}
