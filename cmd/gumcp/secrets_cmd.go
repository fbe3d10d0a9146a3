package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gumcp/gumcp-go/internal/secret"
)

func newSecretsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage secrets referenced from configuration",
		Long: `Manages the secrets that OAuth app files reference with ${keyring:NAME}
and ${env:NAME} placeholders. Stored values live in the OS keyring and
never appear in configuration files.`,
	}

	cmd.AddCommand(newSecretsSetCommand())
	cmd.AddCommand(newSecretsGetCommand())
	cmd.AddCommand(newSecretsDeleteCommand())
	cmd.AddCommand(newSecretsListCommand())
	return cmd
}

// secretRef accepts either a full ${type:name} reference or a bare name,
// which defaults to the keyring.
func secretRef(arg string) (secret.Ref, error) {
	if secret.IsRef(arg) {
		ref, err := secret.ParseRef(arg)
		if err != nil {
			return secret.Ref{}, err
		}
		return *ref, nil
	}
	return secret.Ref{
		Type:     secret.TypeKeyring,
		Name:     arg,
		Original: fmt.Sprintf("${%s:%s}", secret.TypeKeyring, arg),
	}, nil
}

func newSecretsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret in the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := secretRef(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Enter value for %s: ", ref.Original)
			value, err := readPassword()
			if err != nil {
				return fmt.Errorf("failed to read secret: %w", err)
			}
			if value == "" {
				return fmt.Errorf("secret value cannot be empty")
			}

			resolver := secret.NewResolver()
			if err := resolver.Store(cmd.Context(), ref, value); err != nil {
				return fmt.Errorf("failed to store secret: %w", err)
			}

			fmt.Printf("Stored %s. Reference it from configuration as %s\n", ref.Name, ref.Original)
			return nil
		},
	}
}

func newSecretsGetCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Read a secret (masked unless --show)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := secretRef(args[0])
			if err != nil {
				return err
			}

			resolver := secret.NewResolver()
			value, err := resolver.Resolve(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("failed to resolve secret: %w", err)
			}

			if show {
				fmt.Println(value)
			} else {
				fmt.Println(secret.MaskValue(value))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Print the secret value in the clear")
	return cmd
}

func newSecretsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a secret from the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := secretRef(args[0])
			if err != nil {
				return err
			}

			resolver := secret.NewResolver()
			if err := resolver.Delete(cmd.Context(), ref); err != nil {
				return fmt.Errorf("failed to delete secret: %w", err)
			}

			fmt.Printf("Deleted %s\n", ref.Name)
			return nil
		},
	}
}

func newSecretsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known secret references",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := secret.NewResolver()
			refs, err := resolver.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list secrets: %w", err)
			}
			if len(refs) == 0 {
				fmt.Println("No stored secrets.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tREFERENCE")
			for _, ref := range refs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ref.Type, ref.Name, ref.Original)
			}
			return w.Flush()
		},
	}
}
