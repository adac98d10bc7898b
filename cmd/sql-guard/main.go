package main

import (
	"context"
	"fmt"
	"os"

	"sql-guard/internal/auditor"
	"sql-guard/internal/config"
	"sql-guard/internal/model"
	"sql-guard/internal/parser"
	"sql-guard/internal/reporter"
	"sql-guard/internal/scanner"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	formatFlag  string
	allowUnsafe bool
	configPath  string
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "sql-guard",
	Short: "Catch unsafe SQL migrations before they take down production",
	Long: `sql-guard statically analyzes SQL migration files for operations that
lock tables, lose data, or break running applications, and suggests a safe
way to perform each one. Statements wrapped in safety-assured comment blocks
are exempted from checking.`,
	SilenceUsage: true,
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check a migration file or directory for unsafe operations",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default " + config.DefaultFileName + " in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(config.DefaultFileName); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", config.DefaultFileName)
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&formatFlag, "format", "f", "text", "Output format (text, json)")
	checkCmd.Flags().BoolVar(&allowUnsafe, "allow-unsafe", false, "Exit 0 even if violations are found")
	checkCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: "+config.DefaultFileName+" if present)")
	checkCmd.Flags().IntVar(&concurrency, "concurrency", 8, "Number of files analyzed in parallel")
	rootCmd.AddCommand(checkCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCheckNames(auditor.AllRuleNames()); err != nil {
		return err
	}

	engine := auditor.NewWithConfig(parser.NewSQLParser(), cfg)
	walker := scanner.NewMigrationWalker(cfg)

	files, err := walker.Discover(args[0])
	if err != nil {
		return err
	}

	pool := scanner.NewWorkerPool(concurrency, engine.AuditFile)
	results := pool.Run(context.Background(), files)

	// One broken file must not hide findings from the others: failures go
	// to stderr and the remaining reports still render.
	var reports []model.FileReport
	fatal := false
	for _, res := range results {
		if res.Err != nil {
			fatal = true
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", color.RedString("error:"), res.File, res.Err)
			continue
		}
		reports = append(reports, res.Report)
	}

	var rpt model.Reporter
	switch formatFlag {
	case "json":
		rpt = reporter.NewJSONReporter()
	default:
		rpt = reporter.NewConsoleReporter()
	}
	if err := rpt.Report(reports); err != nil {
		return err
	}

	total := 0
	for _, report := range reports {
		total += len(report.Violations)
	}

	if fatal {
		os.Exit(2)
	}
	if total > 0 && !allowUnsafe {
		os.Exit(1)
	}
	return nil
}
