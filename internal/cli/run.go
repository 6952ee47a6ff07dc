package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prophecies/internal/bridge"
	"github.com/mesh-intelligence/prophecies/internal/logsink"
	"github.com/mesh-intelligence/prophecies/internal/workbook"
)

func newTransformCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Migrate the JSON document to the canonical schema in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, bridge.ModeTransform)
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Write the JSON document into the record sheet",
		Long: "Migrate the JSON document, save the canonical form, and replace the\n" +
			"data rows of the record sheet. The sheet is created when missing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, bridge.ModeImport)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the record sheet back to the JSON document",
		Long: "Read every data row of the record sheet and overwrite the JSON\n" +
			"document. Nothing is written when two rows share a prophecy_ref.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, bridge.ModeExport)
		},
	}
}

// newRunID returns a time-ordered identifier for one invocation.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// run executes mode. Console output is captured by a Sink; for the workbook
// modes it is flushed to the log sheet before the workbook is saved, whether
// or not the mode succeeded.
func (a *app) run(cmd *cobra.Command, mode string) (err error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}

	sink := logsink.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	log, err := logsink.NewLogger(sink, cfg.LogLevel)
	if err != nil {
		return &ExitError{Code: exitUserError, Err: fmt.Errorf("log level: %w", err)}
	}
	defer func() { _ = log.Sync() }()

	runID := newRunID()
	log.Debug("run started", zap.String("mode", mode), zap.String("run", runID),
		zap.String("backend", cfg.Backend), zap.String("document", cfg.Document))

	b := bridge.New(cfg, log)
	if mode == bridge.ModeTransform {
		res, err := b.Transform()
		if err != nil {
			log.Error("transform failed", zap.Error(err))
			return asExit(err)
		}
		report(sink, res)
		return nil
	}

	wb, err := workbook.Open(cfg)
	if err != nil {
		log.Error("workbook unavailable", zap.String("workbook", cfg.Workbook), zap.Error(err))
		return asExit(fmt.Errorf("open workbook %q: %w", cfg.Workbook, err))
	}
	defer func() {
		// A broken log sheet never fails the run.
		_ = sink.Flush(wb, cfg.LogSheet, time.Now(), runID)
		if serr := wb.Save(); serr != nil && err == nil {
			err = &ExitError{Code: exitSysError, Err: fmt.Errorf("save workbook: %w", serr)}
		}
		_ = wb.Close()
	}()

	var res bridge.Result
	switch mode {
	case bridge.ModeImport:
		res, err = b.Import(wb)
	case bridge.ModeExport:
		res, err = b.Export(wb)
	}
	if err != nil {
		log.Error(mode+" failed", zap.Error(err))
		return asExit(err)
	}
	report(sink, res)
	return nil
}

// report prints the outcome of a successful mode.
func report(sink *logsink.Sink, res bridge.Result) {
	out := sink.Stdout()
	switch res.Mode {
	case bridge.ModeTransform:
		fmt.Fprintf(out, "Transformed %d records in %s\n", res.Records, res.Document)
	case bridge.ModeImport:
		fmt.Fprintf(out, "Imported %d rows into sheet %q\n", res.Records, res.Sheet)
	case bridge.ModeExport:
		fmt.Fprintf(out, "Exported %d rows from sheet %q to %s\n", res.Records, res.Sheet, res.Document)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(sink.Stderr(), "WARNING: "+w)
	}
}
