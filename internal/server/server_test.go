package server_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scribed-io/scribed/internal/bus"
	"github.com/scribed-io/scribed/internal/config"
	"github.com/scribed-io/scribed/internal/job"
	"github.com/scribed-io/scribed/internal/pipeline"
	"github.com/scribed-io/scribed/internal/server"
	"github.com/scribed-io/scribed/internal/testutil"
	"github.com/scribed-io/scribed/internal/transcript"
)

type wireEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Data    *struct {
		TranscriptionTextSRT string `json:"transcription_text_srt"`
		OriginalFilename     string `json:"original_filename"`
	} `json:"data"`
}

type testServer struct {
	http    *httptest.Server
	adapter *testutil.MockAdapter
	jobs    job.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	adapter := testutil.NewMockAdapter()
	jobs := job.NewStore()
	scripts := transcript.NewStore()
	eventBus := bus.New(64)

	pcfg := pipeline.DefaultConfig()
	pcfg.Segmenter.MaxSegmentDuration = 2 * time.Second
	ctrl := pipeline.New(pcfg, jobs, scripts, eventBus, adapter)

	scfg := config.DefaultConfig().Server
	srv := server.New(scfg, ctrl, jobs, eventBus)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctrl.Shutdown()
	})
	return &testServer{http: ts, adapter: adapter, jobs: jobs}
}

func uploadWAV(t *testing.T, ts *testServer, filename string, wav []byte) string {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", filename)
	if err != nil {
		t.Fatalf("multipart: %v", err)
	}
	part.Write(wav)
	w.Close()

	resp, err := http.Post(ts.http.URL+"/api/transcribe/start", w.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("start request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	var out struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if out.TaskID == "" {
		t.Fatal("empty task id")
	}
	return out.TaskID
}

// streamEvents reads the NDJSON stream until the finish event.
func streamEvents(t *testing.T, ts *testServer, id string) []wireEvent {
	t.Helper()

	resp, err := http.Get(ts.http.URL + "/api/transcribe/stream/" + id)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("stream content type = %q", ct)
	}

	var events []wireEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev wireEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", line, err)
		}
		events = append(events, ev)
		if ev.Type == "finish" {
			break
		}
	}
	return events
}

func speechWAV(t *testing.T) []byte {
	clip := testutil.SpeechClip(8000, 2.0, [2]float64{0.2, 1.8})
	return testutil.WAVBytes(t, clip)
}

func TestStartStreamAndStatus(t *testing.T) {
	ts := newTestServer(t)

	id := uploadWAV(t, ts, "meeting.wav", speechWAV(t))
	events := streamEvents(t, ts, id)

	if len(events) == 0 || events[len(events)-1].Type != "finish" {
		t.Fatal("stream did not end with a finish event")
	}

	var result *wireEvent
	for i := range events {
		if events[i].Type == "result" {
			result = &events[i]
		}
	}
	if result == nil || result.Data == nil {
		t.Fatal("no result event in stream")
	}
	if result.Data.OriginalFilename != "meeting.wav" {
		t.Errorf("original filename = %q", result.Data.OriginalFilename)
	}
	if !strings.Contains(result.Data.TranscriptionTextSRT, "-->") {
		t.Errorf("result SRT looks wrong:\n%s", result.Data.TranscriptionTextSRT)
	}

	resp, err := http.Get(ts.http.URL + "/api/transcribe/status/" + id)
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer resp.Body.Close()

	var j job.Job
	if err := json.NewDecoder(resp.Body).Decode(&j); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if j.Status != job.StatusSucceeded {
		t.Errorf("status = %s, want succeeded", j.Status)
	}
	if j.DoneAt.IsZero() {
		t.Error("doneAt not set on finished job")
	}
}

func TestStreamReplaysAfterFinish(t *testing.T) {
	ts := newTestServer(t)
	id := uploadWAV(t, ts, "a.wav", speechWAV(t))

	// First stream consumes the job to completion.
	streamEvents(t, ts, id)

	// A late subscriber still gets the full history.
	events := streamEvents(t, ts, id)
	if len(events) == 0 || events[len(events)-1].Type != "finish" {
		t.Fatal("replayed stream did not end with finish")
	}
}

func TestStartRejectsMissingFile(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("note", "no file here")
	w.Close()

	resp, err := http.Post(ts.http.URL+"/api/transcribe/start", w.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Detail == "" {
		t.Error("error response has no detail")
	}
}

func TestStreamUnknownJob(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/api/transcribe/stream/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCancel(t *testing.T) {
	ts := newTestServer(t)
	ts.adapter.Delay = 300 * time.Millisecond

	id := uploadWAV(t, ts, "long.wav", speechWAV(t))

	resp, err := http.Post(ts.http.URL+"/api/transcribe/cancel/"+id, "application/json", nil)
	if err != nil {
		t.Fatalf("cancel request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}

	testutil.WaitForCondition(t, func() bool {
		j, err := ts.jobs.Get(id)
		return err == nil && j.Status == job.StatusCancelled
	}, 5*time.Second)
}

func TestCancelUnknownJob(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.http.URL+"/api/transcribe/cancel/nope", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/api/transcribe/status/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)
	srt := "1\n00:00:01,500 --> 00:00:03,750\nhello\n\n"

	body, _ := json.Marshal(map[string]string{
		"transcription_text_srt": srt,
		"format":                 "vtt",
		"original_filename":      "meeting.wav",
	})
	resp, err := http.Post(ts.http.URL+"/api/transcribe/download", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("download request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vtt" {
		t.Errorf("content type = %q, want text/vtt", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `"meeting.vtt"`) {
		t.Errorf("content disposition = %q", cd)
	}

	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	if !strings.HasPrefix(out.String(), "WEBVTT\n\n") {
		t.Errorf("body missing WEBVTT header:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "00:00:01.500 --> 00:00:03.750") {
		t.Errorf("body missing converted timecode:\n%s", out.String())
	}
}

func TestDownloadRejects(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty SRT", `{"transcription_text_srt": "", "format": "vtt"}`},
		{"unsupported format", fmt.Sprintf(`{"transcription_text_srt": %q, "format": "pdf"}`, "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n")},
		{"invalid body", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.http.URL+"/api/transcribe/download", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}
