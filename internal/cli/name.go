package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/personachat/personachat/internal/config"
	"github.com/personachat/personachat/internal/identity"
	"github.com/personachat/personachat/internal/storage"
)

var nameCmd = &cobra.Command{
	Use:   "name display-name...",
	Short: "Set the display name passed to the memory store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runName,
}

func init() {
	RootCmd.AddCommand(nameCmd)
}

func runName(cmd *cobra.Command, args []string) error {
	// Only the state path is needed; no credentials are validated here.
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	kv, err := storage.NewSQLiteKV(cfg.StateDBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	resolver := identity.NewResolver(kv, nil, newLogger())
	deviceID, err := resolver.DeviceID()
	if err != nil {
		return err
	}

	name := strings.Join(args, " ")
	if err := resolver.SetDisplayName(deviceID, name); err != nil {
		return err
	}

	fmt.Printf("Display name set to %q.\n", name)
	return nil
}
