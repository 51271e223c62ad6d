// Package career wires the resume profiler, job search, scraper and LLM
// writers into the gap analysis and cover letter workflows.
package career
