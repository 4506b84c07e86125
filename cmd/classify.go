package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/hardware-cli/internal/classify"
	"github.com/sells-group/hardware-cli/internal/normalize"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <input>",
	Short: "Show the component type guessed for an identifier",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify(cmd.OutOrStdout(), strings.Join(args, " "), classifyJSON)
	},
}

type classifyOutput struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	classify.Result
}

func runClassify(w io.Writer, input string, asJSON bool) error {
	normalized := normalize.Text(input)
	out := classifyOutput{Input: input, Normalized: normalized, Result: classify.Explain(normalized)}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Normalized", "Type", "Confidence", "Matches"},
		[][]string{{out.Normalized, string(out.Type), formatScore(out.Confidence), fmt.Sprint(out.Matches)}},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}
