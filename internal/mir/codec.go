package mir

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the Module wire format changes.
const moduleSchemaVersion uint16 = 1

// modulePayload is the on-disk envelope around a Module.
type modulePayload struct {
	Schema uint16 `msgpack:"schema"`
	Module Module `msgpack:"module"`
}

// EncodeModule serializes a module to the msgpack wire format used for
// front-end hand-off (.mir files).
func EncodeModule(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("mir: nil module")
	}
	data, err := msgpack.Marshal(modulePayload{Schema: moduleSchemaVersion, Module: *m})
	if err != nil {
		return nil, fmt.Errorf("mir: encode module %s: %w", m.Name, err)
	}
	return data, nil
}

// DecodeModule parses a msgpack-encoded module.
func DecodeModule(data []byte) (*Module, error) {
	var payload modulePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("mir: decode module: %w", err)
	}
	if payload.Schema != moduleSchemaVersion {
		return nil, fmt.Errorf("mir: unsupported module schema %d (want %d)", payload.Schema, moduleSchemaVersion)
	}
	return &payload.Module, nil
}

// ReadModuleFile loads and decodes a .mir file.
func ReadModuleFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mir: read %s: %w", path, err)
	}
	m, err := DecodeModule(data)
	if err != nil {
		return nil, fmt.Errorf("mir: %s: %w", path, err)
	}
	return m, nil
}

// WriteModuleFile encodes and writes a .mir file.
func WriteModuleFile(path string, m *Module) error {
	data, err := EncodeModule(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("mir: write %s: %w", path, err)
	}
	return nil
}
