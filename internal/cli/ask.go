package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/personachat/personachat/internal/identity"
	"github.com/personachat/personachat/internal/session"
	"github.com/personachat/personachat/internal/storage"
)

var (
	askPersona string
	askSave    bool
)

var askCmd = &cobra.Command{
	Use:   "ask --type CODE question...",
	Short: "Ask one question in a persona's voice",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askPersona, "type", "t", "", "Persona code (for example INTJ)")
	askCmd.Flags().BoolVar(&askSave, "save", false, "Save the exchange to the memory store")
	askCmd.MarkFlagRequired("type")
	RootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx := cmd.Context()

	kv, err := storage.NewSQLiteKV(cfg.StateDBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	memClient := buildMemoryClient(cfg, logger)

	var registrar identity.Registrar
	var gateway session.Gateway
	if memClient != nil {
		registrar = memClient
		gateway = memClient
	}

	resolver := identity.NewResolver(kv, registrar, logger)
	deviceID, err := resolver.DeviceID()
	if err != nil {
		return err
	}

	ctrl := session.NewController(session.Options{
		Completer:          buildCompleter(cfg, logger),
		Gateway:            gateway,
		Identity:           resolver.Resolve(ctx, deviceID),
		Logger:             logger,
		ContextTokenBudget: cfg.ContextTokenBudget,
		ContextEventRatio:  cfg.ContextEventRatio,
	})

	turn, err := ctrl.Submit(ctx, askPersona, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(turn.Response)

	if turn.Failed {
		return fmt.Errorf("completion failed")
	}

	if askSave {
		if !ctrl.MemoryAvailable() {
			return fmt.Errorf("memory is not configured; set MEMORY_PROJECT_URL and MEMORY_API_KEY")
		}
		if err := ctrl.Save(ctx, turn.ID); err != nil {
			return err
		}
		fmt.Println("Saved to memory.")
	}

	return nil
}
