package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/scribed-io/scribed/internal/bus"
	"github.com/scribed-io/scribed/internal/format"
	"github.com/scribed-io/scribed/internal/job"
)

type startResponse struct {
	TaskID string `json:"task_id"`
}

type downloadRequest struct {
	TranscriptionTextSRT string `json:"transcription_text_srt"`
	Format               string `json:"format"`
	OriginalFilename     string `json:"original_filename"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// handleStart accepts a multipart audio upload and returns the job id.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("files")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no audio files uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "uploaded file has no name")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read uploaded file: %v", err))
		return
	}

	j := s.ctrl.Submit(data, header.Filename)
	writeJSON(w, http.StatusOK, startResponse{TaskID: j.ID})
}

// handleStream pushes the job's event sequence as one JSON record per line.
// The stream replays events buffered since job start and closes after the
// finish event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.jobs.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "unknown task id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := s.bus.Subscribe(id)
	defer s.bus.Unsubscribe(id, sub)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			// Disconnect affects only this subscriber; the job keeps
			// running and a reconnect replays the buffered events.
			log.Printf("server: stream for job %s disconnected", id)
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if err := enc.Encode(ev); err != nil {
				log.Printf("server: stream write for job %s failed: %v", id, err)
				return
			}
			flusher.Flush()
			if ev.Type == bus.KindFinish {
				return
			}
		}
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ctrl.Cancel(id); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown task id")
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"task_id": id, "status": "cancelling"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown task id")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// handleDownload re-renders canonical SRT text into the requested format and
// serves it as a file download.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.TranscriptionTextSRT == "" {
		writeError(w, http.StatusBadRequest, "no transcription text (SRT) provided")
		return
	}

	units, err := format.ParseSRT(req.TranscriptionTextSRT)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid SRT text: %v", err))
		return
	}

	out, err := format.Render(units, req.Format)
	if err != nil {
		var unsupported *format.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			writeError(w, http.StatusBadRequest, unsupported.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.MediaType(req.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(req.OriginalFilename, req.Format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
