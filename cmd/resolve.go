package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/hardware-cli/internal/model"
)

var (
	resolveSelect int
	resolveJSON   bool
	resolveQuiet  bool
)

// errCanceled is returned when the user declines to pick a candidate.
var errCanceled = eris.New("selection canceled")

var resolveCmd = &cobra.Command{
	Use:   "resolve <input>",
	Short: "Resolve a hardware identifier and fetch its specifications",
	Example: `  hwx resolve "Intel Core i7-12700K"
  hwx resolve CMK16GX4M2B3200C16 --json
  hwx resolve "RTX 4090" --select 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		stdout := cmd.OutOrStdout()
		stderr := cmd.ErrOrStderr()
		var sink func(model.Event)
		if !resolveJSON && !resolveQuiet {
			sink = func(ev model.Event) { printEvent(stderr, ev) }
		}
		sess := env.NewSession(sink)

		out := sess.ProcessInput(ctx, strings.Join(args, " "))
		if out.Status == model.OutcomeNeedsSelection {
			choice := resolveSelect
			if choice <= 0 {
				interactive := !resolveJSON && isTerminal(os.Stdin)
				if !interactive {
					if err := printOutcome(stdout, out, resolveJSON); err != nil {
						return err
					}
					fmt.Fprintln(stderr, "re-run with --select N to pick a candidate")
					return nil
				}
				fmt.Fprintln(stdout, candidatesTable(out.Candidates))
				choice, err = promptSelection(cmd.InOrStdin(), stdout, len(out.Candidates))
				if err != nil {
					return err
				}
			}
			out = sess.SelectCandidate(ctx, choice-1)
		}

		if err := printOutcome(stdout, out, resolveJSON); err != nil {
			return err
		}
		if out.Status == model.OutcomeError {
			return eris.New(out.Message)
		}
		return nil
	},
}

// promptSelection asks for a 1-based candidate number until a valid one is
// entered. 0 or EOF cancels.
func promptSelection(in io.Reader, out io.Writer, n int) (int, error) {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Select a candidate [1-%d, 0 to cancel]: ", n)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, eris.Wrap(err, "read selection")
			}
			return 0, errCanceled
		}
		choice, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		switch {
		case err != nil:
			fmt.Fprintln(out, "please enter a number")
		case choice == 0:
			return 0, errCanceled
		case choice < 0 || choice > n:
			fmt.Fprintf(out, "choose between 1 and %d\n", n)
		default:
			return choice, nil
		}
	}
}

func init() {
	resolveCmd.Flags().IntVar(&resolveSelect, "select", 0, "pick candidate N (1-based) when the match is ambiguous")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print the outcome as JSON")
	resolveCmd.Flags().BoolVarP(&resolveQuiet, "quiet", "q", false, "suppress progress events")
	rootCmd.AddCommand(resolveCmd)
}
