package main

import (
	"github.com/spf13/cobra"

	ctxrescue "github.com/ctxrescue/ctxrescue"
)

// --- Global Command Variables ---
var (
	inputPath    string
	outputPath   string
	analyzerName string
	level        string
	maxMessages  int
	htmlOutput   bool
	archive      bool

	rootCmd = &cobra.Command{
		Use:     "ctxrescue",
		Short:   "The eject button for AI conversation doom loops",
		Version: ctxrescue.Version,
		Long: `ctxrescue analyzes a degraded AI conversation, detects loop
patterns (repeated errors, apology cascades, churned code), removes the
redundant turns, and generates a condensed rescue package that seeds a
fresh conversation.`,
	}

	rescueCmd = &cobra.Command{
		Use:   "rescue",
		Short: "Analyze a conversation and generate a clean rescue package",
		RunE:  runRescue,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a conversation without generating a rescue package",
		Long: `Analyze shows what loops were detected and what goal/blocker were
extracted. Useful for debugging or understanding a stuck conversation.`,
		RunE: runAnalyze,
	}
)

func init() {
	rescueCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file containing the conversation (required)")
	rescueCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (auto-generated if not specified)")
	rescueCmd.Flags().StringVar(&analyzerName, "analyzer", "", "Analyzer to use: claude, openai, or none (overrides config)")
	rescueCmd.Flags().StringVar(&level, "sanitization", "", "Sanitization level: minimal, balanced, or aggressive")
	rescueCmd.Flags().IntVar(&maxMessages, "max-messages", 0, "Maximum number of messages to analyze")
	rescueCmd.Flags().BoolVar(&htmlOutput, "html", false, "Also write a sanitized HTML version of the package")
	rescueCmd.Flags().BoolVar(&archive, "archive", false, "Record the rescue event in PostgreSQL (requires DATABASE_URL)")
	_ = rescueCmd.MarkFlagRequired("input")

	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file containing the conversation (required)")
	analyzeCmd.Flags().StringVar(&analyzerName, "analyzer", "", "Analyzer to use: claude, openai, or none (overrides config)")
	_ = analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(rescueCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig builds the client configuration from the environment and
// applies CLI flag overrides. Configuration errors abort the command
// before any analysis runs.
func loadConfig() (*ctxrescue.Config, error) {
	cfg, err := ctxrescue.LoadConfig()
	if err != nil {
		return nil, err
	}

	if analyzerName != "" {
		provider, err := ctxrescue.ParseProvider(analyzerName)
		if err != nil {
			return nil, err
		}
		cfg.Provider = provider
	}
	if level != "" {
		parsed, err := sanitizeLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = parsed
	}
	if maxMessages > 0 {
		cfg.MaxMessages = maxMessages
	}

	return cfg, nil
}
