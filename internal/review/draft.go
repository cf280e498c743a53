package review

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// LoadDraft restores an in-progress form from disk. A missing file is not an
// error; it yields a freshly defaulted form.
func LoadDraft(path string) (Form, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewForm(), nil
		}
		return Form{}, err
	}
	var f Form
	if err := json.Unmarshal(blob, &f); err != nil {
		return Form{}, err
	}
	return f, nil
}

// SaveDraft writes the form to disk atomically (write then rename) so a crash
// mid-save never leaves a corrupt draft.
func SaveDraft(path string, f Form) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
