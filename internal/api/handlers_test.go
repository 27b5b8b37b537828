package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
	genai "google.golang.org/genai"

	"github.com/thywilljoshua/pdf-summarizer/internal/ai"
	"github.com/thywilljoshua/pdf-summarizer/internal/extract"
	"github.com/thywilljoshua/pdf-summarizer/internal/history"
	"github.com/thywilljoshua/pdf-summarizer/internal/orchestrator"
)

type stubSummarizer struct {
	out string
	err error
}

func (s stubSummarizer) Summarize(context.Context, string, ai.Length) (string, error) {
	return s.out, s.err
}

func (s stubSummarizer) ExtractKeyPoints(context.Context, string) (string, error) {
	return s.out, s.err
}

func (s stubSummarizer) SummarizePDF(context.Context, string, ai.Length, ai.Focus) (string, error) {
	return s.out, s.err
}

func (s stubSummarizer) ExtractPDFKeyPoints(context.Context, string, ai.Focus) (string, error) {
	return s.out, s.err
}

func newTestServer(t *testing.T, sum ai.Summarizer, withHistory bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	ex, err := extract.New(extract.Options{Backend: "rsc", Logger: log})
	if err != nil {
		t.Fatal(err)
	}
	timings := orchestrator.DefaultTimings()
	timings.PhaseInterval = 0

	var hist History
	base := []orchestrator.Option{orchestrator.WithLogger(log), orchestrator.WithTimings(timings)}
	if withHistory {
		store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), log)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { store.Close() })
		hist = store
		base = append(base, orchestrator.WithRecorder(store))
	}
	build := func(sf orchestrator.Surface) *orchestrator.Orchestrator {
		if sf == orchestrator.SurfacePDF {
			return orchestrator.New(sf, sum, append(base[:len(base):len(base)], orchestrator.WithExtractor(ex))...)
		}
		return orchestrator.New(sf, sum, base...)
	}
	sessions := NewSessions(build, time.Hour, 0, log)

	return NewRouter(NewHandler(sessions, hist, 1<<20, log), log)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newSession(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/sessions", nil)
	assertStatus(t, rec, http.StatusCreated)
	var body map[string]string
	decodeJSON(t, rec.Body.Bytes(), &body)
	if body["session"] == "" {
		t.Fatalf("no session id in %s", rec.Body.String())
	}
	return "/api/sessions/" + body["session"]
}

func upload(t *testing.T, r http.Handler, base, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.WriteField("last_modified", "1714521600000")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, base+"/pdf/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}

func TestTextRunSuccessAndStatus(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "A short summary."}, true)
	base := newSession(t, r)

	rec := doJSON(t, r, http.MethodPost, base+"/text/run", map[string]string{
		"text": "AI is transforming industries.", "mode": "summary", "length": "short",
	})
	assertStatus(t, rec, http.StatusOK)
	var res orchestrator.Result
	decodeJSON(t, rec.Body.Bytes(), &res)
	if res.Outcome != orchestrator.OutcomeSuccess || res.Text != "A short summary." || res.ID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.ElapsedMillis < 0 || res.OutputWords != 3 {
		t.Fatalf("elapsed=%d output words=%d", res.ElapsedMillis, res.OutputWords)
	}

	rec = doJSON(t, r, http.MethodGet, base+"/text/status", nil)
	assertStatus(t, rec, http.StatusOK)
	var snap orchestrator.Snapshot
	decodeJSON(t, rec.Body.Bytes(), &snap)
	if snap.State != orchestrator.StateSucceeded || snap.Result == nil || snap.Notice == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/history?limit=5", nil)
	assertStatus(t, rec, http.StatusOK)
	var hist struct {
		Results []orchestrator.Result `json:"results"`
	}
	decodeJSON(t, rec.Body.Bytes(), &hist)
	if len(hist.Results) != 1 || hist.Results[0].ID != res.ID {
		t.Fatalf("unexpected history %+v", hist.Results)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/text/clear", nil)
	assertStatus(t, rec, http.StatusNoContent)
	rec = doJSON(t, r, http.MethodGet, base+"/text/status", nil)
	snap = orchestrator.Snapshot{}
	decodeJSON(t, rec.Body.Bytes(), &snap)
	if snap.State != orchestrator.StateIdle || snap.Result != nil {
		t.Fatalf("clear did not reset: %+v", snap)
	}
}

func TestTextRunValidation(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)
	base := newSession(t, r)

	rec := doJSON(t, r, http.MethodPost, base+"/text/run", map[string]string{"text": "   "})
	assertStatus(t, rec, http.StatusBadRequest)
	var res orchestrator.Result
	decodeJSON(t, rec.Body.Bytes(), &res)
	if res.ErrorClass != orchestrator.ClassValidation {
		t.Fatalf("unexpected result %+v", res)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/text/run", map[string]string{"text": "x", "length": "epic"})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestTextRunQuotaMapsTo429(t *testing.T) {
	err := &ai.RequestError{Op: ai.OpSummarize, Kind: ai.KindQuota, Err: genai.APIError{Code: 429}}
	r := newTestServer(t, stubSummarizer{err: err}, false)
	base := newSession(t, r)

	rec := doJSON(t, r, http.MethodPost, base+"/text/run", map[string]string{"text": "hello"})
	assertStatus(t, rec, http.StatusTooManyRequests)
	var res orchestrator.Result
	decodeJSON(t, rec.Body.Bytes(), &res)
	if res.Error != "Failed to summarize text. Please try again." || res.ErrorKind != "quota" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPDFUploadRejectsNonPDF(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)
	base := newSession(t, r)

	rec := upload(t, r, base, "notes.txt", "text/plain", []byte("hello"))
	assertStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decodeJSON(t, rec.Body.Bytes(), &body)
	if body["error"] != "Please select a valid PDF file." {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestPDFRunWithoutFile(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)
	base := newSession(t, r)

	rec := doJSON(t, r, http.MethodPost, base+"/pdf/run", map[string]string{"mode": "keypoints"})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestPDFCorruptFile(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)
	base := newSession(t, r)

	rec := upload(t, r, base, "broken.pdf", "application/pdf", []byte("definitely not a pdf"))
	assertStatus(t, rec, http.StatusOK)
	var doc extract.Document
	decodeJSON(t, rec.Body.Bytes(), &doc)
	if doc.Name != "broken.pdf" || doc.Size != int64(len("definitely not a pdf")) {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !doc.LastModified.Equal(time.UnixMilli(1714521600000)) {
		t.Fatalf("last modified = %v", doc.LastModified)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/pdf/run", map[string]string{"focus": "business"})
	assertStatus(t, rec, http.StatusUnprocessableEntity)
	var res orchestrator.Result
	decodeJSON(t, rec.Body.Bytes(), &res)
	if !strings.HasPrefix(res.Error, "Failed to extract text from PDF.") {
		t.Fatalf("unexpected error %q", res.Error)
	}
}

func TestSessionsDoNotShareDocuments(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)
	alice := newSession(t, r)
	bob := newSession(t, r)

	assertStatus(t, upload(t, r, alice, "alice.pdf", "application/pdf", []byte("not a pdf")), http.StatusOK)
	assertStatus(t, upload(t, r, bob, "bob.pdf", "application/pdf", []byte("not a pdf")), http.StatusOK)

	rec := doJSON(t, r, http.MethodPost, alice+"/pdf/run", map[string]string{})
	var res orchestrator.Result
	decodeJSON(t, rec.Body.Bytes(), &res)
	if res.FileName != "alice.pdf" {
		t.Fatalf("alice's run used %q", res.FileName)
	}

	rec = doJSON(t, r, http.MethodGet, bob+"/pdf/status", nil)
	var snap orchestrator.Snapshot
	decodeJSON(t, rec.Body.Bytes(), &snap)
	if snap.Document == nil || snap.Document.Name != "bob.pdf" || snap.Result != nil {
		t.Fatalf("bob's session was touched: %+v", snap)
	}
}

func TestUnknownAndDeletedSession(t *testing.T) {
	r := newTestServer(t, stubSummarizer{out: "x"}, false)

	rec := doJSON(t, r, http.MethodGet, "/api/sessions/nope/text/status", nil)
	assertStatus(t, rec, http.StatusNotFound)

	base := newSession(t, r)
	assertStatus(t, doJSON(t, r, http.MethodDelete, base, nil), http.StatusNoContent)
	assertStatus(t, doJSON(t, r, http.MethodGet, base+"/pdf/status", nil), http.StatusNotFound)
	assertStatus(t, doJSON(t, r, http.MethodDelete, base, nil), http.StatusNotFound)
}

func TestHistoryDisabled(t *testing.T) {
	r := newTestServer(t, stubSummarizer{}, false)
	rec := doJSON(t, r, http.MethodGet, "/api/history", nil)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestHealthz(t *testing.T) {
	r := newTestServer(t, stubSummarizer{}, false)
	rec := doJSON(t, r, http.MethodGet, "/healthz", nil)
	assertStatus(t, rec, http.StatusOK)
}
