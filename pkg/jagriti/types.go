// Package jagriti implements the typed client for the e-Jagriti case-search
// site: dropdown and result-table parsing, name-to-ID resolution, and the
// search orchestrator. All network access goes through the resilient
// transport; states and commissions are cached behind a short-lived TTL store.
package jagriti

import (
	"errors"
	"fmt"
	"strings"
)

// StateInfo is one entry of the states dropdown. Immutable once fetched.
type StateInfo struct {
	StateText string `json:"state_text"`
	StateID   string `json:"state_id"`
}

// CommissionInfo is one entry of a state's commissions dropdown. Immutable
// once fetched, scoped to one state.
type CommissionInfo struct {
	CommissionText string `json:"commission_text"`
	CommissionID   string `json:"commission_id"`
	StateID        string `json:"state_id"`
}

// CaseRecord is one normalized result row. Produced per search call, never
// persisted.
type CaseRecord struct {
	CaseNumber          string `json:"case_number"`
	CaseStage           string `json:"case_stage"`
	FilingDate          string `json:"filing_date"`
	Complainant         string `json:"complainant"`
	ComplainantAdvocate string `json:"complainant_advocate"`
	Respondent          string `json:"respondent"`
	RespondentAdvocate  string `json:"respondent_advocate"`
	DocumentLink        string `json:"document_link"`
}

// SearchParams describes one case-search request. DateFrom/DateTo are
// optional YYYY-MM-DD strings.
type SearchParams struct {
	SearchType     string
	StateText      string
	CommissionText string
	SearchValue    string
	DateFrom       string
	DateTo         string
	Page           int
	PerPage        int
}

// searchTypeFields maps the API search type to the upstream form field it
// constrains. The set is fixed by the upstream search form.
var searchTypeFields = map[string]string{
	"case_number":          "case_no",
	"complainant":          "complainant_name",
	"respondent":           "respondent_name",
	"complainant_advocate": "complainant_advocate_name",
	"respondent_advocate":  "respondent_advocate_name",
	"industry_type":        "industry_type",
	"judge":                "judge_name",
}

// SearchTypes lists the supported search types in no particular order.
func SearchTypes() []string {
	types := make([]string, 0, len(searchTypeFields))
	for t := range searchTypeFields {
		types = append(types, t)
	}
	return types
}

// ErrUnknownSearchType is returned for a search type outside the fixed set.
var ErrUnknownSearchType = errors.New("unknown search type")

// NotFoundError reports a failed state or commission name resolution. It
// carries every known candidate name so callers can surface suggestions.
type NotFoundError struct {
	Kind       string // "state" or "commission"
	Input      string
	Candidates []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found. Available: %s",
		e.Kind, e.Input, strings.Join(e.Candidates, ", "))
}
