package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var v struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	for _, p := range []string{"/predict", "/model", "/status"} {
		if _, ok := v.Paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
	if v.Swagger != "2.0" {
		t.Fatalf("swagger version %q", v.Swagger)
	}
}
