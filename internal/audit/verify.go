package audit

import (
	"encoding/json"
	"fmt"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify reads a JSONL ledger and validates the hash chain.
// Returns Valid=true if the chain is intact, or details about
// the first broken link.
func Verify(path string) VerifyResult {
	lines, err := readLines(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("read: %v", err)}
	}

	expected := GenesisHash
	for i, line := range lines {
		lineNum := i + 1

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: lineNum,
			}
		}

		if entry.PrevHash != expected {
			return VerifyResult{
				Error:     fmt.Sprintf("hash mismatch: expected %s, got %s", expected, entry.PrevHash),
				ErrorLine: lineNum,
			}
		}

		expected, err = HashLine(line)
		if err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("canonicalize: %v", err),
				ErrorLine: lineNum,
			}
		}
	}

	return VerifyResult{Valid: true, Lines: len(lines)}
}

// Tail returns the last n entries of a ledger. Unparseable lines are skipped.
func Tail(path string, n int) ([]Entry, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	start := max(len(lines)-n, 0)
	entries := make([]Entry, 0, len(lines)-start)
	for _, line := range lines[start:] {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
