package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KooshaPari/vibeproxy/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials in the system keyring",
	Long: `Manage VibeProxy credentials stored in the system secret service.
Values are kept in the desktop keyring's default collection, scoped to this
application, and are never written to the config file.`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a secret (reads the value from stdin when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSecretSet,
}

var secretGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a secret's value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretGet,
}

var secretRmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"delete"},
	Short:   "Remove a secret",
	Args:    cobra.ExactArgs(1),
	RunE:    runSecretRm,
}

var secretListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored secret keys",
	RunE:    runSecretList,
}

func init() {
	secretCmd.AddCommand(secretGetCmd)
	secretCmd.AddCommand(secretListCmd)
	secretCmd.AddCommand(secretRmCmd)
	secretCmd.AddCommand(secretSetCmd)
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprint(os.Stderr, "Value: ")

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		value = strings.TrimRight(line, "\r\n")
	}

	store, err := secrets.Connect()
	if err != nil {
		return err
	}

	if err := store.Store(key, value); err != nil {
		return err
	}

	fmt.Printf("Stored secret %s.\n", styleValue.Render(key))

	return nil
}

func runSecretGet(cmd *cobra.Command, args []string) error {
	store, err := secrets.Connect()
	if err != nil {
		return err
	}

	value, ok, err := store.Retrieve(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("secret %q not found", args[0])
	}

	fmt.Println(value)

	return nil
}

func runSecretRm(cmd *cobra.Command, args []string) error {
	store, err := secrets.Connect()
	if err != nil {
		return err
	}

	if err := store.Delete(args[0]); err != nil {
		return err
	}

	fmt.Printf("Removed secret %s.\n", styleValue.Render(args[0]))

	return nil
}

func runSecretList(cmd *cobra.Command, args []string) error {
	store, err := secrets.Connect()
	if err != nil {
		return err
	}

	keys, err := store.ListKeys()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Println(styleHint.Render("No secrets stored."))
		return nil
	}

	for _, key := range keys {
		fmt.Println(key)
	}

	return nil
}
