package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PagesFile is the file name WriteDataset produces.
const PagesFile = "pages.json"

// WriteDataset serializes the dataset pages into pages.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return writeJSON(filepath.Join(dir, PagesFile), dataset.Pages)
}

// ReadDataset loads a pages.json file written by WriteDataset.
func ReadDataset(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var ds Dataset
	if err := json.NewDecoder(file).Decode(&ds.Pages); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return ds, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
