package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/connector/catalog"
)

func newToolsCommand() *cobra.Command {
	var (
		onlyConnector string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools each connector exposes",
		Long:  "Lists every tool in the connector catalog without contacting any provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := catalog.NewRegistry()
			if err != nil {
				return err
			}

			names := registry.Names()
			if onlyConnector != "" {
				if _, ok := registry.Get(onlyConnector); !ok {
					return fmt.Errorf("%w: %s", connector.ErrUnknownProvider, onlyConnector)
				}
				names = []string{onlyConnector}
			}

			if jsonOutput {
				return printToolsJSON(registry, names)
			}
			return printToolsTable(registry, names)
		},
	}

	cmd.Flags().StringVar(&onlyConnector, "connector", "", "Limit output to a single connector")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type toolListing struct {
	Connector string           `json:"connector"`
	AuthKind  string           `json:"auth_kind"`
	Tools     []connector.Tool `json:"tools"`
}

func printToolsJSON(registry *connector.Registry, names []string) error {
	listings := make([]toolListing, 0, len(names))
	for _, name := range names {
		c, _ := registry.Get(name)
		listings = append(listings, toolListing{
			Connector: name,
			AuthKind:  string(c.Descriptor().AuthKind),
			Tools:     c.Tools(),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(listings)
}

func printToolsTable(registry *connector.Registry, names []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONNECTOR\tTOOL\tDESCRIPTION")
	for _, name := range names {
		c, _ := registry.Get(name)
		for _, tool := range c.Tools() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, tool.Name, tool.Description)
		}
	}
	return w.Flush()
}
