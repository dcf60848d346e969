package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc() error = %v", err)
	}

	var parsed struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if parsed.BasePath != "/api/v1" {
		t.Errorf("basePath = %q, want /api/v1", parsed.BasePath)
	}
	for _, p := range []string{"/posts", "/usage", "/billing/checkout"} {
		if _, ok := parsed.Paths[p]; !ok {
			t.Errorf("path %s missing", p)
		}
	}
}
