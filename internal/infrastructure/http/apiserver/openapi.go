package apiserver

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the embedded OpenAPI document
type OpenAPIHandler struct {
	logger   *zap.Logger
	specYAML []byte
	specJSON []byte
}

// NewOpenAPIHandler parses the embedded document once so both encodings are served from memory
func NewOpenAPIHandler(logger *zap.Logger) *OpenAPIHandler {
	h := &OpenAPIHandler{logger: logger, specYAML: openAPISpec}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		logger.Error("Failed to parse OpenAPI spec", zap.Error(err))
		return h
	}
	data, err := json.Marshal(doc)
	if err != nil {
		logger.Error("Failed to encode OpenAPI spec", zap.Error(err))
		return h
	}
	h.specJSON = data
	return h
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.specYAML)
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	if h.specJSON == nil {
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.specJSON)
}
