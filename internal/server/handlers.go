// internal/server/handlers.go
package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "research-assistant/internal/common/errors"
	"research-assistant/internal/pipeline"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// researchRequestSchema validates the POST /api/research body before it
// reaches the pipeline.
var researchRequestSchema = map[string]interface{}{
	"type":                 "object",
	"required":             []interface{}{"query"},
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
		"apiKey": map[string]interface{}{
			"type":      "string",
			"maxLength": 256,
		},
	},
}

type researchRequest struct {
	Query  string `json:"query"`
	APIKey string `json:"apiKey"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, map[string]interface{}{
		"HasServerKey": s.defaultKey != "",
	}); err != nil {
		s.logger.WithError(err).Error("failed to render index", nil)
	}
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("body is not valid JSON"))
		return
	}

	if err := validateRequest(body); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	var req researchRequest
	raw, _ := json.Marshal(body)
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("body does not match the expected shape"))
		return
	}

	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		apiKey = s.defaultKey
	}

	resp, err := s.runner.Run(r.Context(), pipeline.Request{
		Query:  req.Query,
		APIKey: apiKey,
	})
	if err != nil {
		s.writeError(w, apperrors.Normalize(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Error("failed to encode response", nil)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// validateRequest checks the decoded body against the request schema.
func validateRequest(body map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(researchRequestSchema)
	documentLoader := gojsonschema.NewGoLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}
	if !result.Valid() {
		descs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			descs[i] = desc.String()
		}
		return &validationError{details: strings.Join(descs, "; ")}
	}
	return nil
}

type validationError struct {
	details string
}

func (e *validationError) Error() string { return e.details }

// writeError maps the error taxonomy onto HTTP statuses and a stable JSON
// error envelope.
func (s *Server) writeError(w http.ResponseWriter, stdErr *apperrors.StandardError) {
	status := http.StatusInternalServerError
	switch stdErr.Code {
	case apperrors.ErrCodeEmptyQuery, apperrors.ErrCodeInvalidRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeMissingCredential:
		status = http.StatusUnauthorized
	}

	var resp errorResponse
	resp.Error.Code = string(stdErr.Code)
	resp.Error.Message = apperrors.UserMessage(stdErr.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
