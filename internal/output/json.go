package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSON writes data as JSON to stdout
func JSON(data interface{}) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as JSON to the given writer
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// JSONFile writes data as indented JSON to path, creating parent directories
func JSONFile(path string, data interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := JSONTo(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Output writes data in the specified format to stdout
func Output(format string, data interface{}) error {
	return OutputTo(os.Stdout, format, data)
}

// OutputTo writes data in the specified format to the given writer
func OutputTo(w io.Writer, format string, data interface{}) error {
	switch format {
	case "json":
		return JSONTo(w, data)
	case "table", "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
