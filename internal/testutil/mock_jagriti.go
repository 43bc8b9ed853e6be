// Package testutil provides a configurable mock of the upstream case-search
// site for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Upstream paths served by the mock.
const (
	SearchPagePath    = "/daily_order_search/"
	CommissionsPath   = "/get_commissions/"
	SearchResultsPath = "/daily_order_search/results/"
)

// SearchPageHTML is the search page with the states dropdown.
const SearchPageHTML = `<!DOCTYPE html>
<html>
<head><title>Daily Order Case Search</title></head>
<body>
<form id="search-form" method="post" action="/daily_order_search/results/">
  <select id="state" name="state">
    <option value="">-- Select State --</option>
    <option value="29">KARNATAKA</option>
    <option value="27">MAHARASHTRA</option>
    <option value="33">TAMIL NADU</option>
    <option value="7">DELHI</option>
    <option value="24">GUJARAT</option>
  </select>
  <select id="commission" name="commission"></select>
</form>
</body>
</html>`

// CommissionsKarnatakaHTML is the commissions dropdown fragment for state 29.
const CommissionsKarnatakaHTML = `<option value="">-- Select Commission --</option>
<option value="29_1">District Consumer Disputes Redressal Commission, Bangalore Urban</option>
<option value="29_2">District Consumer Disputes Redressal Commission, Mysore</option>
<option value="29_3">District Consumer Disputes Redressal Commission, Bangalore Rural</option>
<option value="29_4">District Consumer Disputes Redressal Commission, Dakshina Kannada</option>
<option value="29_5">District Consumer Disputes Redressal Commission, Belagavi</option>
<option value="29_6">District Consumer Disputes Redressal Commission, Tumkur</option>`

// SearchResultsHTML is a results page with five well-formed rows and an
// explicit total in the summary element.
const SearchResultsHTML = `<!DOCTYPE html>
<html>
<body>
<div class="search-summary">Total 150 records found</div>
<table class="results">
  <tr>
    <th>Case Number</th><th>Stage</th><th>Filing Date</th><th>Complainant</th>
    <th>Complainant Advocate</th><th>Respondent</th><th>Respondent Advocate</th><th>Documents</th>
  </tr>
  <tr>
    <td>CC/123/2023</td><td>Under Hearing</td><td>15/03/2023</td><td>John Doe</td>
    <td>Advocate A. Kumar</td><td>XYZ Corporation Ltd</td><td>Advocate B. Sharma</td>
    <td><a href="/documents/cc_123_2023.pdf">View</a></td>
  </tr>
  <tr>
    <td>CC/124/2023</td><td>Admitted</td><td>18/03/2023</td><td>Jane Smith</td>
    <td>Advocate C. Rao</td><td>ABC Services Pvt Ltd</td><td>Advocate D. Iyer</td>
    <td><a href="/documents/cc_124_2023.pdf">View</a></td>
  </tr>
  <tr>
    <td>CC/125/2023</td><td>Disposed</td><td>21/03/2023</td><td>Ramesh Gupta</td>
    <td>Advocate E. Nair</td><td>PQR Builders</td><td>Advocate F. Menon</td>
    <td><a href="https://docs.example.com/cc_125_2023.pdf">View</a></td>
  </tr>
  <tr>
    <td>CC/126/2023</td><td>Under Hearing</td><td>25/03/2023</td><td>Sunita Devi</td>
    <td>Advocate G. Patil</td><td>LMN Insurance Co</td><td>Advocate H. Joshi</td>
    <td></td>
  </tr>
  <tr>
    <td>CC/127/2023</td><td>Admitted</td><td>28/03/2023</td><td>Arun Verma</td>
    <td>Advocate I. Desai</td><td>DEF Motors</td><td>Advocate J. Kulkarni</td>
    <td><a href="/documents/cc_127_2023.pdf">View</a></td>
  </tr>
</table>
</body>
</html>`

// CaptchaPageHTML is a challenge page; any response containing it must be
// treated as terminal.
const CaptchaPageHTML = `<!DOCTYPE html>
<html>
<body>
<h1>Security Check</h1>
<p>Please verify you are human to continue.</p>
<div class="g-recaptcha" data-sitekey="test"></div>
</body>
</html>`

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockJagriti is a configurable mock upstream site for testing.
type MockJagriti struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
	LastForm          map[string][]string
}

// NewMockJagriti creates a mock site preloaded with the standard fixtures:
// the search page, Karnataka commissions, and a five-row results page.
func NewMockJagriti() *MockJagriti {
	mock := &MockJagriti{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		if err := r.ParseForm(); err == nil {
			mock.LastForm = r.PostForm
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// defaultHandler serves the standard fixtures.
func (m *MockJagriti) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	switch r.URL.Path {
	case SearchPagePath:
		w.Write([]byte(SearchPageHTML))
	case CommissionsPath:
		w.Write([]byte(CommissionsKarnatakaHTML))
	case SearchResultsPath:
		w.Write([]byte(SearchResultsHTML))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// URL returns the mock server URL.
func (m *MockJagriti) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockJagriti) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockJagriti) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
	m.LastForm = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockJagriti) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockJagriti) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// FailTimes makes path answer with status for the first n requests, then fall
// back to the default fixture.
func (m *MockJagriti) FailTimes(path string, n, status int) {
	var mu sync.Mutex
	remaining := n
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fail := remaining > 0
		if fail {
			remaining--
		}
		mu.Unlock()

		if fail {
			w.WriteHeader(status)
			return
		}
		m.defaultHandler(w, r)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockJagriti) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to one path.
func (m *MockJagriti) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// GetLastForm returns the form values of the most recent POST.
func (m *MockJagriti) GetLastForm() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastForm
}
