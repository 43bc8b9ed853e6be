package jagriti

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var malformedRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "jagriti_malformed_rows_total",
	Help: "Total number of malformed result rows dropped during parsing",
})

// firstIntPattern extracts the leading integer of a results summary string.
var firstIntPattern = regexp.MustCompile(`\d+`)

// normalizeDate converts an upstream date cell to ISO-8601. The site mixes
// day-first formats ("15/03/2023", "15-03-2023") with spelled-out ones; an
// unparsable value is returned as the original trimmed text, never an error.
func normalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	t, err := dateparse.ParseAny(trimmed, dateparse.PreferMonthFirst(false))
	if err != nil {
		return trimmed
	}
	return t.Format("2006-01-02")
}

// normalizeDocumentLink resolves a document href to an absolute URL.
// Relative links are joined with baseURL; absolute links pass through;
// blank input yields an empty string.
func normalizeDocumentLink(raw, baseURL string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return trimmed
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// parseStates extracts the states dropdown from the search page. Options with
// an empty value are placeholders and skipped.
func parseStates(body []byte) ([]StateInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	sel := doc.Find("select#state, select[name=state]")
	if sel.Length() == 0 {
		sel = doc.Find("select").First()
	}

	var states []StateInfo
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		id, _ := opt.Attr("value")
		text := strings.TrimSpace(opt.Text())
		if id == "" || text == "" {
			return
		}
		states = append(states, StateInfo{StateText: text, StateID: id})
	})

	if len(states) == 0 {
		return nil, fmt.Errorf("no state options found in search page")
	}
	return states, nil
}

// parseCommissions extracts the commissions dropdown fragment returned for
// one state.
func parseCommissions(body []byte, stateID string) ([]CommissionInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse commissions fragment: %w", err)
	}

	var commissions []CommissionInfo
	doc.Find("option").Each(func(_ int, opt *goquery.Selection) {
		id, _ := opt.Attr("value")
		text := strings.TrimSpace(opt.Text())
		if id == "" || text == "" {
			return
		}
		commissions = append(commissions, CommissionInfo{
			CommissionText: text,
			CommissionID:   id,
			StateID:        stateID,
		})
	})

	return commissions, nil
}

// parseSearchResults extracts case records and, when the page carries one,
// the total count from the results summary. The seven leading cells of each
// row map positionally to the textual fields; the final cell is searched for
// a document hyperlink. Rows with fewer than seven cells are dropped and
// logged, never aborting the rest of the page.
func parseSearchResults(body []byte, baseURL string, logger zerolog.Logger) ([]CaseRecord, int, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, false, fmt.Errorf("parse results page: %w", err)
	}

	records := make([]CaseRecord, 0)
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			// Header row.
			return
		}
		if cells.Length() < 7 {
			malformedRowsTotal.Inc()
			logger.Warn().
				Int("row", i).
				Int("cells", cells.Length()).
				Msg("Dropping malformed result row")
			return
		}

		text := func(idx int) string {
			return strings.TrimSpace(cells.Eq(idx).Text())
		}

		link := ""
		if href, ok := cells.Eq(cells.Length() - 1).Find("a").First().Attr("href"); ok {
			link = href
		}

		records = append(records, CaseRecord{
			CaseNumber:          text(0),
			CaseStage:           text(1),
			FilingDate:          normalizeDate(text(2)),
			Complainant:         text(3),
			ComplainantAdvocate: text(4),
			Respondent:          text(5),
			RespondentAdvocate:  text(6),
			DocumentLink:        normalizeDocumentLink(link, baseURL),
		})
	})

	total, found := parseTotalCount(doc)
	return records, total, found, nil
}

// parseTotalCount pulls the first integer out of the results summary element,
// e.g. "Total 150 records found".
func parseTotalCount(doc *goquery.Document) (int, bool) {
	summary := strings.TrimSpace(doc.Find(".search-summary, .results-summary, .record-count").First().Text())
	if summary == "" {
		return 0, false
	}
	match := firstIntPattern.FindString(summary)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
