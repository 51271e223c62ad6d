package workflow

import (
	"fmt"
)

// Field names a single slot of State that a node may write.
type Field string

const (
	FieldResumeText           Field = "resume_text"
	FieldTargetURL            Field = "target_url"
	FieldJobSearchQuery       Field = "job_search_query"
	FieldRegion               Field = "region"
	FieldProfileSummary       Field = "profile_summary"
	FieldGeneratedSearchQuery Field = "generated_search_query"
	FieldFoundJobResults      Field = "found_job_results"
	FieldSelectedJobURL       Field = "selected_job_url"
	FieldJobDescription       Field = "job_description"
	FieldGapAnalysis          Field = "gap_analysis"
	FieldFinalCoverLetter     Field = "final_cover_letter"
)

// SearchResult is one hit returned by the search provider.
type SearchResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// JobDescription is the outcome of scraping a job page.
type JobDescription struct {
	URL    string `json:"url"`
	OK     bool   `json:"ok"`
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// String renders the description the way downstream prompts consume it.
// A failed scrape becomes an inline error message naming the URL.
func (d JobDescription) String() string {
	if d.OK {
		return d.Text
	}
	return fmt.Sprintf("Error in scraping %s: %s", d.URL, d.Reason)
}

// State is the record threaded through one workflow run.
//
// State is treated as immutable: Merge returns a new value and never
// touches the receiver.
type State struct {
	ResumeText           string         `json:"resume_text"`
	TargetURL            string         `json:"target_url,omitempty"`
	JobSearchQuery       string         `json:"job_search_query,omitempty"`
	Region               string         `json:"region,omitempty"`
	ProfileSummary       string         `json:"profile_summary,omitempty"`
	GeneratedSearchQuery string         `json:"generated_search_query,omitempty"`
	FoundJobResults      []SearchResult `json:"found_job_results"`
	SelectedJobURL       string         `json:"selected_job_url,omitempty"`
	JobDescription       JobDescription `json:"job_description"`
	GapAnalysis          string         `json:"gap_analysis,omitempty"`
	FinalCoverLetter     string         `json:"final_cover_letter,omitempty"`
}

// JobDescriptionText is the job description as plain text, including the
// inline error message when the scrape failed.
func (s State) JobDescriptionText() string {
	if s.JobDescription.URL == "" && !s.JobDescription.OK {
		return ""
	}
	return s.JobDescription.String()
}

// SearchQuery returns the query the researcher should use: the one the
// caller supplied, or else the one derived from the resume.
func (s State) SearchQuery() string {
	if s.JobSearchQuery != "" {
		return s.JobSearchQuery
	}
	return s.GeneratedSearchQuery
}

// Update is a partial state produced by a node.
type Update map[Field]any

// Fields lists the keys of u.
func (u Update) Fields() []Field {
	out := make([]Field, 0, len(u))
	for f := range u {
		out = append(out, f)
	}
	return out
}

// Merge applies u on top of s and returns the result. Values must have the
// Go type of the target field.
func (s State) Merge(u Update) (State, error) {
	next := s.clone()
	for field, value := range u {
		if err := next.set(field, value); err != nil {
			return s, err
		}
	}
	return next, nil
}

func (s State) clone() State {
	if s.FoundJobResults != nil {
		results := make([]SearchResult, len(s.FoundJobResults))
		copy(results, s.FoundJobResults)
		s.FoundJobResults = results
	}
	return s
}

func (s *State) set(field Field, value any) error {
	switch field {
	case FieldFoundJobResults:
		v, ok := value.([]SearchResult)
		if !ok {
			return invalidUpdate(field, value)
		}
		results := make([]SearchResult, len(v))
		copy(results, v)
		s.FoundJobResults = results
		return nil
	case FieldJobDescription:
		v, ok := value.(JobDescription)
		if !ok {
			return invalidUpdate(field, value)
		}
		s.JobDescription = v
		return nil
	}

	v, ok := value.(string)
	if !ok {
		return invalidUpdate(field, value)
	}
	switch field {
	case FieldResumeText:
		s.ResumeText = v
	case FieldTargetURL:
		s.TargetURL = v
	case FieldJobSearchQuery:
		s.JobSearchQuery = v
	case FieldRegion:
		s.Region = v
	case FieldProfileSummary:
		s.ProfileSummary = v
	case FieldGeneratedSearchQuery:
		s.GeneratedSearchQuery = v
	case FieldSelectedJobURL:
		s.SelectedJobURL = v
	case FieldGapAnalysis:
		s.GapAnalysis = v
	case FieldFinalCoverLetter:
		s.FinalCoverLetter = v
	default:
		return &UpdateError{Field: field, Msg: "unknown field"}
	}
	return nil
}

func invalidUpdate(field Field, value any) error {
	return &UpdateError{Field: field, Msg: fmt.Sprintf("unexpected value type %T", value)}
}
