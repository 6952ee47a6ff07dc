// Package cli implements the bridge command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// rootFlags holds global flag values accessible to all subcommands. Flags
// that map onto config.yaml keys are bound to viper instead.
type rootFlags struct {
	configDir string
}

// app is the state shared by one command tree.
type app struct {
	flags rootFlags
	v     *viper.Viper
}

// NewRootCmd creates the top-level "bridge" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "bridge",
		Short: "Move prophecy records between a JSON document and a workbook",
		Long: "Bridge migrates a prophecy JSON document to the canonical schema,\n" +
			"imports it into a workbook sheet, and exports the sheet back to JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+envConfigDir+")")
	pf.String("backend", "", "workbook backend: xlsx, sqlite or memory")
	pf.String("workbook", "", "workbook path")
	pf.String("document", "", "prophecy JSON document path")
	pf.String("sheet", "", "record sheet name")
	pf.String("log-level", "", "log level: debug, info, warn or error")

	for key, flag := range boundFlags {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newTransformCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps err onto an exit code. Errors the user can fix by editing
// the workbook or the configuration are user errors; the rest are system
// errors. Cobra's own argument errors carry no ExitError and count as user
// errors.
func exitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitUserError
}

// asExit wraps err in an ExitError with a code chosen from its sentinel.
func asExit(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	code := exitSysError
	for _, target := range userErrors {
		if errors.Is(err, target) {
			code = exitUserError
			break
		}
	}
	return &ExitError{Code: code, Err: err}
}

var userErrors = []error{
	types.ErrDuplicateKeys,
	types.ErrSheetNotFound,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrDocumentEmpty,
	types.ErrWidthCapInvalid,
	types.ErrSheetNameInvalid,
}
