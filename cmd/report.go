// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oss-metrics/repolang/internal/analyzer"
	"github.com/oss-metrics/repolang/internal/cloner"
	"github.com/oss-metrics/repolang/internal/config"
	"github.com/oss-metrics/repolang/internal/gateway"
	"github.com/oss-metrics/repolang/internal/report"
	"github.com/oss-metrics/repolang/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Catalogs language composition and writes the xlsx report",
	Long: `Lists the repositories of every configured project, determines each
repository's language composition (by cloning and inspecting it, or with
--remote from the hosting service's own statistics), and writes one sheet
per project plus an overall summary to a single xlsx workbook.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		configPath, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		// Flags override the config file.
		if cmd.Flags().Changed("projects") {
			cfg.Projects, _ = cmd.Flags().GetStringSlice("projects")
		}
		if cmd.Flags().Changed("output") {
			cfg.Output, _ = cmd.Flags().GetString("output")
		}
		if cmd.Flags().Changed("workdir") {
			cfg.Workdir, _ = cmd.Flags().GetString("workdir")
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("remote") {
			cfg.Remote, _ = cmd.Flags().GetBool("remote")
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// Credentials come from the environment only; a local .env file is
		// honored for development setups.
		_ = godotenv.Load()
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}
		user := os.Getenv("GITHUB_USER")
		if user == "" {
			// Token-based basic auth accepts any non-empty account name.
			user = "x-access-token"
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		gitCloner := cloner.NewGitCloner("github.com", cloner.Credentials{Username: user, Token: token}, logger)

		var repoAnalyzer analyzer.Analyzer
		if cfg.Remote {
			repoAnalyzer = analyzer.NewRemoteAnalyzer(githubGateway, logger)
		} else {
			repoAnalyzer = analyzer.NewLocalAnalyzer(logger)
		}

		runner := usecase.NewRunner(githubGateway, gitCloner, repoAnalyzer,
			usecase.RunnerConfig{Workdir: cfg.Workdir, Workers: cfg.Workers},
			os.Stdout, logger)

		acc, err := runner.Run(ctx, cfg.Projects)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to run analysis: %v\n", err)
			os.Exit(1)
		}
		overall := acc.FinalizeOverall()

		writer := report.NewExcelWriter(logger)
		if err := writer.Write(acc.Projects(), overall, cfg.Output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}

		report.RenderSummary(os.Stdout, overall)
		color.Green("Language analysis saved to %s", cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringSliceP("projects", "p", nil, "Project keys to catalog (overrides config)")
	reportCmd.Flags().StringP("output", "o", "", "Output xlsx path (overrides config)")
	reportCmd.Flags().String("workdir", "", "Scratch directory for working copies")
	reportCmd.Flags().Int("workers", config.DefaultWorkers, "Concurrent repository workers")
	reportCmd.Flags().Bool("remote", false, "Use hosting-service language stats instead of cloning")
}
