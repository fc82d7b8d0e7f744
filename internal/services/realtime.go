package services

import (
	"errors"
	"io/fs"
	"os"
)

// FlagFile gates realtime ingest on the presence of a file: present means
// enabled. The file's contents are irrelevant.
type FlagFile struct {
	Path string
}

func (f *FlagFile) Enabled() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// Enable creates the flag file; Disable removes it. Both are idempotent.
func (f *FlagFile) Enable() error {
	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return file.Close()
}

func (f *FlagFile) Disable() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
