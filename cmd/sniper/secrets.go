package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobsniper/internal/secrets"
)

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage secrets stored in the OS keychain",
	}

	set := &cobra.Command{
		Use:       "set <name>",
		Short:     "Store a secret read from stdin",
		Long:      "Store a secret in the OS keychain. The value is read from the first line of stdin. Names: " + strings.Join(secrets.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: secrets.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToUpper(strings.TrimSpace(args[0]))
			if !secrets.Known(name) {
				return fmt.Errorf("unknown secret %q (want one of %s)", args[0], strings.Join(secrets.Names(), ", "))
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", name)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read value: %w", err)
			}
			if err := secrets.Set(name, strings.TrimSpace(line)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s in keychain service %q\n", name, secrets.KeyringService)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a secret from the keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToUpper(strings.TrimSpace(args[0]))
			if err := secrets.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
