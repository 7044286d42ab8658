package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uditb/resumesculpt/internal/ats"
	"github.com/uditb/resumesculpt/internal/llm"
	"github.com/uditb/resumesculpt/internal/logger"
)

var (
	scoreResumePath string
	scoreJobPath    string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Long:  `Run a one-shot detailed ATS score for a resume YAML file against a job description text file, printing the result as JSON.`,
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreResumePath, "resume", "", "path to resume YAML file (required)")
	scoreCmd.Flags().StringVar(&scoreJobPath, "job", "", "path to job description text file (required)")
	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	resumeYAML, err := os.ReadFile(scoreResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	jobText, err := os.ReadFile(scoreJobPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	log, err := logger.New(false, false)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := cmd.Context()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()

	jd, err := ats.NewNormalizer(client, log).Normalize(ctx, string(jobText))
	if err != nil {
		return err
	}

	score, err := ats.NewScorer(client, log).ScoreDetailed(ctx, string(resumeYAML), jd)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
