package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/pkg/plantuml"
)

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <token|url>",
		Short: "Print the PlantUML text behind an encoded token or image URL",
		Long: `Decode a deflate+base64 PlantUML token, as found after "~1" in image URLs
produced by generate and convert --url, back into PlantUML text.`,
		Example: `  mdtouml decode "$(mdtouml convert docs/auth.md --url | tail -n 1)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runDecode(w io.Writer, arg string) error {
	// Tokens never contain "~", so anything before the marker is URL.
	if i := strings.Index(arg, "~1"); i >= 0 {
		arg = arg[i:]
	}
	text, err := plantuml.Decode(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, text)
	return nil
}
