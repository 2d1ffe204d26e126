package cmd

import (
	"os"

	"github.com/minilang/minilang/internal/repl"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive minilang session",
	Long: `Start a read-eval-print loop: each line is lexed, parsed, analyzed,
compiled, and executed against a VM whose variables persist across lines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl.New("minilang> ").Start(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
