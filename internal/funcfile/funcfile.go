// Package funcfile reads and writes files of custom function definitions.
//
// The file is an object mapping each function name to its parameters and
// body expression, encoded as JSON or YAML according to the file extension.
package funcfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/calc"
)

// DefaultPath is the function file used when none is configured.
const DefaultPath = "functions/functions.json"

// Load reads the function file at path. A file that does not exist loads as
// empty, and its directory is created so that a later Save succeeds.
func Load(path string) (map[string]calc.CustomFunction, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := mkdir(path); err != nil {
			return nil, err
		}
		return make(map[string]calc.CustomFunction), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read function file: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses function definitions in the format named by ext, which is a
// file extension including the dot.
func Decode(data []byte, ext string) (map[string]calc.CustomFunction, error) {
	m := make(map[string]calc.CustomFunction)
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported function file extension: %q", ext)
	}
	if m == nil {
		// A YAML document of just null.
		m = make(map[string]calc.CustomFunction)
	}
	return m, nil
}

// Encode formats function definitions in the format named by ext.
func Encode(m map[string]calc.CustomFunction, ext string) ([]byte, error) {
	// Always write a list of parameters, never null.
	out := make(map[string]calc.CustomFunction, len(m))
	for k, v := range m {
		if v.Parameters == nil {
			v.Parameters = []string{}
		}
		out[k] = v
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	case ".json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported function file extension: %q", ext)
	}
}

// Save writes m to the function file at path, replacing it atomically.
func Save(path string, m map[string]calc.CustomFunction) error {
	data, err := Encode(m, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := mkdir(path); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write function file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write function file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace function file: %w", err)
	}
	return nil
}

func mkdir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create function directory: %w", err)
	}
	return nil
}
