package label

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// errorJSON writes a JSON error body with CORS headers set
func errorJSON(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// bodyError maps a body read or decode failure onto a status code
func bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		errorJSON(w, "Request body is too large", http.StatusRequestEntityTooLarge)
		return
	}
	errorJSON(w, "Invalid request body", http.StatusBadRequest)
}

type extractRequest struct {
	Text string `json:"text"`
}

// handleExtract extracts label fields from OCR text sent as JSON or plain text
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			slog.Error("Error reading request body", "error", err)
			bodyError(w, err)
			return
		}
		text = string(data)
	} else {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			bodyError(w, err)
			return
		}
		text = req.Text
	}

	writeJSON(w, s.service.Extract(text))
}

type batchRequest struct {
	Documents []Document `json:"documents"`
}

type batchResponse struct {
	Results []BatchResult `json:"results"`
}

// handleExtractBatch extracts label fields from several OCR texts
func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bodyError(w, err)
		return
	}

	results, err := s.service.ExtractBatch(r.Context(), req.Documents)
	if err != nil {
		if errors.Is(err, ErrEmptyBatch) {
			errorJSON(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Error extracting batch", "documents", len(req.Documents), "error", err)
		errorJSON(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, batchResponse{Results: results})
}

type validateRequest struct {
	SerialNumber string `json:"serialNumber"`
	Manufacturer string `json:"manufacturer"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// handleValidate checks a serial number against a manufacturer
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bodyError(w, err)
		return
	}

	writeJSON(w, validateResponse{Valid: s.service.Validate(req.SerialNumber, req.Manufacturer)})
}

// handleHealth reports that the server is up
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}
