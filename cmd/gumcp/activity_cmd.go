package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumcp/gumcp-go/internal/logs"
)

func newActivityCommand() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent tool invocations",
		Long:  "Prints the invocation log kept alongside credentials, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			records, err := rt.store.ListActivity(limit)
			if err != nil {
				return fmt.Errorf("failed to list activity: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Println("No recorded activity.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tCONNECTOR\tTOOL\tUSER\tRESULT\tELAPSED")
			for _, r := range records {
				result := "ok"
				if !r.OK {
					result = "error: " + r.Error
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Timestamp.Format(time.RFC3339), r.Provider, r.Tool, r.UserID,
					result, r.Elapsed.Round(time.Millisecond))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
