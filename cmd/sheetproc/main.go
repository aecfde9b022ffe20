// Package main provides the CLI entry point for the spreadsheet engine.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IamElnar/Spreadsheet-processor/spreadsheet"
)

var (
	sheetPath string
	setFlags  []string
	outPath   string
	worksheet string
	dump      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetproc",
		Short: "Evaluate and convert spreadsheet formula sheets",
		Long: `sheetproc works with native sheet streams produced by the engine's
save format and with xlsx workbooks. Cells hold literals or formulas
("=A1+B$2*2"); formulas may reference other cells with relative or
$-absolute axes.`,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [address...]",
		Short: "Evaluate cells, optionally after applying --set updates",
		RunE:  runEval,
	}
	evalCmd.Flags().StringVarP(&sheetPath, "file", "f", "", "Sheet stream to load first")
	evalCmd.Flags().StringArrayVar(&setFlags, "set", nil, "Cell update ADDR=CONTENTS (repeatable)")
	evalCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the resulting sheet stream here")
	evalCmd.Flags().BoolVar(&dump, "dump", false, "Print every non-empty cell before the requested values")

	convertCmd := &cobra.Command{
		Use:   "convert input.xlsx output.sheet",
		Short: "Convert an xlsx worksheet to a native sheet stream",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}
	convertCmd.Flags().StringVar(&worksheet, "sheet", "", "Worksheet name (default: first)")

	exportCmd := &cobra.Command{
		Use:   "export input.sheet output.xlsx",
		Short: "Export a native sheet stream to an xlsx workbook",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&worksheet, "sheet", "", "Worksheet name to create (default: Sheet1)")

	rootCmd.AddCommand(evalCmd, convertCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	s := spreadsheet.NewSheet()
	if sheetPath != "" {
		if err := loadSheet(s, sheetPath); err != nil {
			return err
		}
	}

	for _, update := range setFlags {
		eq := strings.IndexByte(update, '=')
		if eq <= 0 {
			return fmt.Errorf("invalid --set %q, want ADDR=CONTENTS", update)
		}
		addr, err := spreadsheet.ParseAddress(update[:eq])
		if err != nil {
			return err
		}
		if err := s.SetCell(addr, update[eq+1:]); err != nil {
			return fmt.Errorf("set %s: %w", update[:eq], err)
		}
	}

	if dump {
		if err := s.Dump(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	for _, arg := range args {
		addr, err := spreadsheet.ParseAddress(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", addr, s.GetValue(addr))
	}

	if outPath != "" {
		return saveSheet(s, outPath)
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := spreadsheet.ImportXLSX(args[0], worksheet)
	if err != nil {
		return err
	}
	return saveSheet(s, args[1])
}

func runExport(cmd *cobra.Command, args []string) error {
	s := spreadsheet.NewSheet()
	if err := loadSheet(s, args[0]); err != nil {
		return err
	}
	return spreadsheet.ExportXLSX(s, args[1], worksheet)
}

func loadSheet(s *spreadsheet.Sheet, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Load(f)
}

func saveSheet(s *spreadsheet.Sheet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
