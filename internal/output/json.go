package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/codeprobe/internal/model"
)

// Result is the persisted record of one probe.
type Result struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Target      string          `json:"target"`
	Payload     string          `json:"payload"`
	Headers     []model.Header  `json:"headers"`
	Response    *model.Response `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// NewResult records the outcome of probe. Exactly one of resp and sendErr
// ends up in the result.
func NewResult(probe model.Request, resp model.Response, sendErr error, generatedAt time.Time) Result {
	result := Result{
		ID:          uuid.NewString(),
		GeneratedAt: generatedAt,
		Target:      probe.TargetURL,
		Payload:     probe.Payload,
		Headers:     probe.Headers,
	}

	if sendErr != nil {
		result.Error = sendErr.Error()
		return result
	}

	result.Response = &resp
	return result
}

// WriteJSON writes the probe result to a JSON file.
func WriteJSON(path string, result Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
