package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/codeprobe/internal/model"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "probe.json")

	result := Result{
		ID:          "5f0c6c1e-4a57-4a43-9d0e-0c6b5a8c2f11",
		GeneratedAt: time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC),
		Target:      "http://localhost:7860/api/v1/validate/code",
		Payload:     "print(1)",
		Headers:     []model.Header{{Name: "Content-Type", Value: "application/json"}},
		Response:    &model.Response{StatusCode: 200, Body: "ok"},
	}

	if err := WriteJSON(path, result); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read JSON output: %v", err)
	}

	const expected = `{
  "id": "5f0c6c1e-4a57-4a43-9d0e-0c6b5a8c2f11",
  "generated_at": "2024-03-01T15:04:05Z",
  "target": "http://localhost:7860/api/v1/validate/code",
  "payload": "print(1)",
  "headers": [
    {
      "name": "Content-Type",
      "value": "application/json"
    }
  ],
  "response": {
    "status_code": 200,
    "body": "ok"
  }
}`

	if string(data) != expected {
		t.Fatalf("unexpected JSON output:\nexpected:\n%s\n\nactual:\n%s", expected, string(data))
	}
}

func TestNewResultWithError(t *testing.T) {
	t.Parallel()

	probe := model.Request{TargetURL: "http://127.0.0.1:1", Payload: "x"}
	result := NewResult(probe, model.Response{}, errors.New("connection refused"), time.Now())

	if _, err := uuid.Parse(result.ID); err != nil {
		t.Fatalf("expected a UUID identifier, got %q", result.ID)
	}

	if result.Response != nil {
		t.Fatalf("expected no response on failure, got %+v", result.Response)
	}

	if result.Error != "connection refused" {
		t.Fatalf("unexpected error text: %q", result.Error)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if _, ok := decoded["response"]; ok {
		t.Fatalf("response key should be omitted on failure: %s", data)
	}
}
