// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// MockRoundTripper serves a fixed response (or error) for every request and
// records the requests it saw, so HTTP clients can be tested without a
// network.
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, r)
	return m.response, m.err
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

// SequenceRoundTripper serves scripted responses in order, repeating the
// last one once the script runs out.
type SequenceRoundTripper struct {
	script   []scriptedResponse
	calls    int
	Requests []*http.Request
}

func NewSequenceRoundTripper() *SequenceRoundTripper {
	return &SequenceRoundTripper{}
}

// Respond appends a scripted response. body is served as-is.
func (s *SequenceRoundTripper) Respond(status int, body string) *SequenceRoundTripper {
	s.script = append(s.script, scriptedResponse{status: status, body: body})
	return s
}

// Fail appends a scripted transport error.
func (s *SequenceRoundTripper) Fail(err error) *SequenceRoundTripper {
	s.script = append(s.script, scriptedResponse{err: err})
	return s
}

func (s *SequenceRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, r)
	i := min(s.calls, len(s.script)-1)
	s.calls++

	step := s.script[i]
	if step.err != nil {
		return nil, step.err
	}
	return JSONResponse(step.status, step.body), nil
}

// JSONResponse builds an *http.Response with a JSON content type.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
