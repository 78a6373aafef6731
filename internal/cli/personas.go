package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/personachat/personachat/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the sixteen personality types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range persona.All() {
			fmt.Printf("%s %s  %s\n", p.Icon, p.Code, p.Description)
		}
	},
}

func init() {
	RootCmd.AddCommand(personasCmd)
}
