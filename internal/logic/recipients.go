package logic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// LoadRecipients reads a JSONC file holding an array of recipient IDs.
func LoadRecipients(path string) ([]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading recipients file %q: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &ids); err != nil {
		return nil, fmt.Errorf("parsing recipients file %q: %w", path, err)
	}

	return ids, nil
}
