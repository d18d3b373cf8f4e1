package audio

import "errors"

// ErrNoSpeech is returned by Split when no voice activity is found at all.
// Callers treat this as a completed run with an empty result, not a failure.
var ErrNoSpeech = errors.New("no speech detected in input")

// DecodeError marks input that could not be parsed as audio.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return "audio decode error"
	}
	return "audio decode error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewDecodeError(err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Err: err}
}

func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
