// Package audit keeps a copy of every import payload on disk so that a bad
// import can be inspected and replayed.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/highlights-keeper/internal/utils"
)

type Auditor struct {
	AuditDir string
}

// NewAuditor creates an auditor writing to auditDir. An empty directory
// disables auditing.
func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// Enabled reports whether payloads are being saved.
func (a *Auditor) Enabled() bool {
	return a != nil && a.AuditDir != ""
}

// Record is the envelope written for each saved payload.
type Record struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	UserEmail  string    `json:"user_email"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    any       `json:"payload"`
}

// SaveImport writes the payload of one import as
// <user>_<uuid>.json and returns the file name.
func (a *Auditor) SaveImport(source, userEmail string, payload any) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	auditID := uuid.New()
	record := Record{
		ID:         auditID.String(),
		Source:     source,
		UserEmail:  userEmail,
		ReceivedAt: time.Now().UTC(),
		Payload:    payload,
	}

	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", utils.SanitizeFilename(userEmail), auditID.String())
	path := filepath.Join(a.AuditDir, filename)

	// Payloads carry personal reading data
	if err := os.WriteFile(path, jsonData, 0600); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Saved audit file: %s", path)
	return filename, nil
}

// DeleteOlderThan removes saved payloads whose modification time is older
// than retention and returns how many were removed.
func (a *Auditor) DeleteOlderThan(retention time.Duration) (int, error) {
	if !a.Enabled() {
		return 0, nil
	}

	entries, err := os.ReadDir(a.AuditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read audit directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("failed to remove audit file %s: %w", entry.Name(), err)
		}
		deleted++
	}
	return deleted, nil
}
