// cmd/encode.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woohung/morse-game/internal/morse"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text as Morse symbol strings",
	Long: `Encode text into dot/dash symbol strings. Letters are separated by a
single space, words by a double space. Unsupported characters are skipped
and reported on stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		encoded, err := morse.EncodeMessage(text)
		if err != nil {
			// Partial output is still useful; report what was skipped.
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
