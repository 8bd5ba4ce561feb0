// Package cli wires the plenum commands: solve runs the full pipeline from
// workbook to report, check stops after validation.
package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/alexanderramin/plenum/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// NewRootCmd builds the plenum command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plenum",
		Short: "Schedule committee-led review meetings",
		Long: `plenum assigns committee-led review meetings to calendar slots.

It reads an instance workbook (SQLite), checks its integrity, and solves a
mixed-integer program that places each team's remaining meetings, staffs
them with commissioners, and balances personal load.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// ExitError carries a process exit code alongside the underlying error, so
// main can distinguish validation failures (1) from infeasibility (2).
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

func envEnabled(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
