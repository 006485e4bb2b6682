package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
}{
	JSON: "application/json",
	Text: "text/plain; charset=utf-8",
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeResponse(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

// WriteJSONResponseOK writes an already encoded JSON body.
func WriteJSONResponseOK(w http.ResponseWriter, message string) {
	writeResponse(w, ContentType.JSON, []byte(message), http.StatusOK)
}

// WriteJSON marshals v and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal response %T: %s", v, err)
		writeResponse(w, ContentType.Text, []byte("internal error"), http.StatusInternalServerError)
		return
	}
	writeResponse(w, ContentType.JSON, payload, statusCode)
}

func WriteJSONError(w http.ResponseWriter, statusCode int, kind, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Kind: kind})
}
