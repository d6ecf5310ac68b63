// cmd/decode.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woohung/morse-game/internal/morse"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [symbols]",
	Short: "Decode Morse symbol strings back into text",
	Long: `Decode dot/dash symbol strings into text. A single space ends a
character, a double space ends a word (e.g. "... --- ...  ....").`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		decoded, err := morse.DecodeMessage(message)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), decoded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
