package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	ctxrescue "github.com/ctxrescue/ctxrescue"
	"github.com/ctxrescue/ctxrescue/rescue"
	"github.com/ctxrescue/ctxrescue/sanitize"
	"github.com/ctxrescue/ctxrescue/storage"
	"github.com/ctxrescue/ctxrescue/transcript"
)

func sanitizeLevel(s string) (sanitize.Level, error) {
	return sanitize.ParseLevel(s)
}

func runRescue(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

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
	fmt.Printf("Loaded %d messages from %s\n", len(messages), inputPath)

	result, err := client.Rescue(ctx, messages)
	if err != nil {
		return err
	}
	fmt.Printf("Analysis complete: %d loop patterns detected\n", len(result.Analysis.LoopsDetected))
	fmt.Printf("Removed %d messages (%.1f%% reduction)\n", result.Stats.TotalRemoved, result.Stats.ReductionPercent)

	generator, err := rescue.NewGenerator()
	if err != nil {
		return err
	}

	output := outputPath
	if output == "" {
		output = filepath.Join(cfg.OutputDir, rescue.Filename("rescue"))
	}
	if err := generator.WriteFile(output, result.Analysis, result.Sanitized, &result.Stats); err != nil {
		return err
	}
	fmt.Printf("Rescue package written to %s\n", output)

	if htmlOutput {
		if err := writeHTML(generator, output, result); err != nil {
			return err
		}
	}

	if archive {
		if err := archiveEvent(cmd, result, output); err != nil {
			// Archiving is best-effort; the package is already on disk.
			slog.Warn("failed to archive rescue event", "error", err)
		}
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Copy the rescue package content")
	fmt.Println("  2. Start a fresh conversation with any LLM")
	fmt.Println("  3. Paste the content and continue where you left off")
	return nil
}

func writeHTML(generator *rescue.Generator, mdPath string, result *ctxrescue.Result) error {
	markdown, err := generator.Generate(result.Analysis, result.Sanitized, &result.Stats)
	if err != nil {
		return err
	}
	html, err := rescue.HTML(markdown)
	if err != nil {
		return err
	}

	htmlPath := strings.TrimSuffix(mdPath, filepath.Ext(mdPath)) + ".html"
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write HTML package: %w", err)
	}
	fmt.Printf("HTML package written to %s\n", htmlPath)
	return nil
}

func archiveEvent(cmd *cobra.Command, result *ctxrescue.Result, packagePath string) error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("--archive requires DATABASE_URL")
	}

	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect to archive database: %w", err)
	}
	defer pool.Close()

	store := storage.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	id, err := store.SaveEvent(ctx, &storage.RescueEvent{
		Goal:             result.Analysis.Goal,
		Blocker:          result.Analysis.Blocker,
		Loops:            result.Analysis.LoopsDetected,
		TotalLoops:       result.Analysis.TotalLoops(),
		OriginalCount:    result.Stats.OriginalCount,
		SanitizedCount:   result.Stats.SanitizedCount,
		ReductionPercent: result.Stats.ReductionPercent,
		PackagePath:      &packagePath,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Rescue event archived as %s\n", id)
	return nil
}
