package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	ctxrescue "github.com/ctxrescue/ctxrescue"
	"github.com/ctxrescue/ctxrescue/transcript"
)

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := ctxrescue.NewClient(cfg, ctxrescue.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	messages, err := transcript.ParseFile(inputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Analyzing %d messages...\n\n", len(messages))

	analysis, _, err := client.Analyze(cmd.Context(), messages)
	if err != nil {
		return err
	}

	fmt.Printf("Goal:    %s\n", analysis.Goal)
	fmt.Printf("Blocker: %s\n", analysis.Blocker)
	fmt.Printf("Loops:   %d patterns, %d total occurrences\n", len(analysis.LoopsDetected), analysis.TotalLoops())

	if len(analysis.LoopsDetected) > 0 {
		fmt.Println("\nDetected patterns:")
		for _, loop := range analysis.LoopsDetected {
			fmt.Printf("  - %s\n", loop)
		}
	}
	if len(analysis.KeyInsights) > 0 {
		fmt.Println("\nKey insights:")
		for _, insight := range analysis.KeyInsights {
			fmt.Printf("  - %s\n", insight)
		}
	}
	if len(analysis.RecommendedSteps) > 0 {
		fmt.Println("\nRecommended steps:")
		for i, step := range analysis.RecommendedSteps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}
	return nil
}
