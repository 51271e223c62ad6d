package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muhammadolammi/careeragent/internal/career"
	"github.com/muhammadolammi/careeragent/internal/tools"
)

var runFlags struct {
	resumePath string
	resumeText string
	targetURL  string
	query      string
	region     string
	jsonOut    bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a resume with a job posting and find similar jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWorkflow(cmd, career.ModeGapAnalysis)
	},
}

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Find a matching job and draft a cover letter for it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWorkflow(cmd, career.ModeCoverLetter)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, coverLetterCmd} {
		f := c.Flags()
		f.StringVarP(&runFlags.resumePath, "resume", "r", "", "Resume file (.pdf, .docx or .txt)")
		f.StringVar(&runFlags.resumeText, "resume-text", "", "Resume as plain text, instead of --resume")
		f.StringVar(&runFlags.region, "region", "", "Search region hint, e.g. \"united states\"")
		f.BoolVar(&runFlags.jsonOut, "json", false, "Print the result as JSON")
		c.MarkFlagsMutuallyExclusive("resume", "resume-text")
	}
	analyzeCmd.Flags().StringVarP(&runFlags.targetURL, "url", "u", "", "Job posting URL to analyse (required)")
	_ = analyzeCmd.MarkFlagRequired("url")
	coverLetterCmd.Flags().StringVarP(&runFlags.query, "query", "q", "", "Job search query (derived from the resume when empty)")
}

func resumeFromFlags() (string, error) {
	switch {
	case runFlags.resumeText != "":
		return runFlags.resumeText, nil
	case runFlags.resumePath != "":
		return tools.ExtractResumeFile(runFlags.resumePath)
	default:
		return "", fmt.Errorf("%w: provide --resume or --resume-text", career.ErrInvalidInput)
	}
}

func runWorkflow(cmd *cobra.Command, mode career.Mode) error {
	resume, err := resumeFromFlags()
	if err != nil {
		return err
	}
	in := career.Input{
		Mode:        mode,
		ResumeText:  resume,
		TargetURL:   runFlags.targetURL,
		SearchQuery: runFlags.query,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	in.Region = runFlags.region
	if err := cfg.validateAgent(); err != nil {
		return err
	}

	ctx := cmd.Context()
	agent, err := newCareerAgent(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	res, err := agent.Run(ctx, in)
	if err != nil {
		return describeRunError(err)
	}

	out := cmd.OutOrStdout()
	if runFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(out, strings.TrimSpace(res.Markdown()))
	return nil
}
