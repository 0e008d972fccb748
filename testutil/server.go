package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is what a FakeEndpoint saw
type RecordedRequest struct {
	Path        string
	ContentType string
	// Fields holds JSON body members or multipart form values
	Fields   map[string]string
	FileName string
	FileData []byte
}

// ReplyFunc decides the status and body of a fake response
type ReplyFunc func(req RecordedRequest) (status int, body string)

// FakeEndpoint is an httptest server standing in for the generation and auth
// backends. It records every POST it receives.
type FakeEndpoint struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeEndpoint starts a server answering every POST with reply
func NewFakeEndpoint(t *testing.T, reply ReplyFunc) *FakeEndpoint {
	t.Helper()
	fe := &FakeEndpoint{}
	fe.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		rec, err := recordRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fe.mu.Lock()
		fe.requests = append(fe.requests, rec)
		fe.mu.Unlock()

		status, body := reply(rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(fe.Close)
	return fe
}

// Requests returns the recorded requests in arrival order
func (fe *FakeEndpoint) Requests() []RecordedRequest {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]RecordedRequest(nil), fe.requests...)
}

func recordRequest(r *http.Request) (RecordedRequest, error) {
	rec := RecordedRequest{
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Fields:      make(map[string]string),
	}

	if strings.HasPrefix(rec.ContentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return rec, err
		}
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				rec.Fields[name] = values[0]
			}
		}
		for _, files := range r.MultipartForm.File {
			if len(files) == 0 {
				continue
			}
			f, err := files[0].Open()
			if err != nil {
				return rec, err
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return rec, err
			}
			rec.FileName = files[0].Filename
			rec.FileData = data
		}
		return rec, nil
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return rec, err
	}
	for k, v := range body {
		rec.Fields[k] = fmt.Sprint(v)
	}
	return rec, nil
}

// Success returns a reply func answering {"status":"success","response":response}
func Success(response string) ReplyFunc {
	return func(RecordedRequest) (int, string) {
		return http.StatusOK, SuccessBody(response)
	}
}

// SuccessBody encodes a successful generation reply
func SuccessBody(response string) string {
	data, _ := json.Marshal(map[string]string{"status": "success", "response": response})
	return string(data)
}

// Status returns a reply func answering with a fixed status and body
func Status(status int, body string) ReplyFunc {
	return func(RecordedRequest) (int, string) {
		return status, body
	}
}
