// Package bus is the in-process event channel between the pipeline and any
// number of live stream observers, keyed by job id.
package bus

// Kind classifies events emitted during job execution.
type Kind string

const (
	KindLog      Kind = "log"
	KindProgress Kind = "progress"
	KindResult   Kind = "result"
	KindError    Kind = "error"
	KindFinish   Kind = "finish"
)

// ResultData carries the canonical transcript rendering on a result event.
type ResultData struct {
	TranscriptionTextSRT string `json:"transcription_text_srt"`
	OriginalFilename     string `json:"original_filename,omitempty"`
}

// Event is one sequenced notification for a job. Seq increases monotonically
// per job and is assigned at publish time. The JSON shape is the wire record
// consumed by stream transports.
type Event struct {
	Seq     int64       `json:"-"`
	Type    Kind        `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    *ResultData `json:"data,omitempty"`
}

func Log(msg string) Event      { return Event{Type: KindLog, Message: msg} }
func Progress(msg string) Event { return Event{Type: KindProgress, Message: msg} }
func Error(msg string) Event    { return Event{Type: KindError, Message: msg} }
func Finish() Event             { return Event{Type: KindFinish} }

func Result(srt, filename string) Event {
	return Event{Type: KindResult, Data: &ResultData{
		TranscriptionTextSRT: srt,
		OriginalFilename:     filename,
	}}
}
