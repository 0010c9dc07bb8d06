package backup

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between a backup file's dataset and the
// current one. The export timestamps are blanked first so two otherwise
// identical datasets diff clean. Advisory, like the staleness signal.
func Diff(backupDoc, currentDoc Document) (string, error) {
	backupDoc.ExportedAt = ""
	currentDoc.ExportedAt = ""

	backupJSON, err := json.MarshalIndent(backupDoc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup document: %w", err)
	}
	currentJSON, err := json.MarshalIndent(currentDoc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current document: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(backupJSON)),
		B:        difflib.SplitLines(string(currentJSON)),
		FromFile: "backup",
		ToFile:   "current",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
