package career

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Mode selects which workflow variant a request runs.
type Mode string

const (
	ModeGapAnalysis Mode = "gap_analysis"
	ModeCoverLetter Mode = "cover_letter"
)

var ErrInvalidInput = errors.New("invalid input")

// Input is what the CLI or the queue worker collects from the user.
type Input struct {
	Mode        Mode   `json:"mode"`
	ResumeText  string `json:"resume_text"`
	TargetURL   string `json:"target_url,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
	Region      string `json:"region,omitempty"`
}

// Validate reports missing or malformed input before any node runs.
func (in Input) Validate() error {
	if strings.TrimSpace(in.ResumeText) == "" {
		return fmt.Errorf("%w: resume text is empty", ErrInvalidInput)
	}
	switch in.Mode {
	case ModeGapAnalysis:
		if strings.TrimSpace(in.TargetURL) == "" {
			return fmt.Errorf("%w: a target job URL is required for gap analysis", ErrInvalidInput)
		}
		u, err := url.Parse(strings.TrimSpace(in.TargetURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidInput, in.TargetURL)
		}
	case ModeCoverLetter:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, in.Mode)
	}
	return nil
}
