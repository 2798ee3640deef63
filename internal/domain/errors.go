package domain

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAuthorization Kind = "authorization"
	KindClientInput   Kind = "client_input"
	KindTranscoding   Kind = "transcoding"
	KindRecognition   Kind = "recognition"
	KindProcessing    Kind = "processing"
)

// Messages returned to the browser client.
const (
	MsgMissingConfig   = "You forgot to add your speech key or region to the .env file."
	MsgAuthorization   = "There was an error authorizing your speech key."
	MsgNoFile          = "No file uploaded."
	MsgProcessingAudio = "Error processing audio file"
	MsgRecognition     = "Could not translate the audio"
)

var statusByKind = map[Kind]int{
	KindConfiguration: http.StatusBadRequest,
	KindAuthorization: http.StatusUnauthorized,
	KindClientInput:   http.StatusBadRequest,
	KindTranscoding:   http.StatusInternalServerError,
	KindRecognition:   http.StatusInternalServerError,
	KindProcessing:    http.StatusInternalServerError,
}

// Error is the only error type that leaves the domain layer.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
