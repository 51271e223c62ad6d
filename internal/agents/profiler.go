package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/careeragent/internal/tools"
	"github.com/muhammadolammi/careeragent/internal/workflow"
)

var ErrProfileParse = errors.New("could not parse candidate profile")

// ProfileParseError means the model answered, but not with a usable
// profile. Raw holds the cleaned response for debugging.
type ProfileParseError struct {
	Raw   string
	Cause error
}

func (e *ProfileParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrProfileParse, e.Cause)
}

func (e *ProfileParseError) Unwrap() []error { return []error{ErrProfileParse, e.Cause} }

// Profile is the model's reading of a resume.
type Profile struct {
	Overview    string `json:"overview"`
	SearchQuery string `json:"search_query"`
}

type Profiler struct {
	Model Model
}

// Extract returns a profile with both fields set, or an error. It never
// returns a partially filled profile.
func (p *Profiler) Extract(ctx context.Context, resume string) (Profile, error) {
	if strings.TrimSpace(resume) == "" {
		return Profile{}, errors.New("resume text is empty")
	}

	raw, err := p.Model.Complete(ctx, fmt.Sprintf(profilePrompt, resume))
	if err != nil {
		return Profile{}, fmt.Errorf("profile model call: %w", err)
	}

	cleaned := tools.UnfenceJSON(raw)
	var profile Profile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return Profile{}, &ProfileParseError{Raw: cleaned, Cause: err}
	}

	profile.Overview = strings.TrimSpace(profile.Overview)
	profile.SearchQuery = strings.TrimSpace(profile.SearchQuery)
	switch {
	case profile.Overview == "":
		return Profile{}, &ProfileParseError{Raw: cleaned, Cause: errors.New("missing overview")}
	case profile.SearchQuery == "":
		return Profile{}, &ProfileParseError{Raw: cleaned, Cause: errors.New("missing search_query")}
	}
	return profile, nil
}

func (p *Profiler) Node() workflow.Node {
	return workflow.Node{
		Name:   "profiler",
		Writes: []workflow.Field{workflow.FieldProfileSummary, workflow.FieldGeneratedSearchQuery},
		Run: func(ctx context.Context, s workflow.State) (workflow.Update, error) {
			profile, err := p.Extract(ctx, s.ResumeText)
			if err != nil {
				return nil, err
			}
			return workflow.Update{
				workflow.FieldProfileSummary:       profile.Overview,
				workflow.FieldGeneratedSearchQuery: profile.SearchQuery,
			}, nil
		},
	}
}
