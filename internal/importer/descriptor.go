// Package importer implements module search, decoding and resolution
// caching over a session's virtual file system. Go has no dynamic module
// execution, so a "module" here is a small declarative Descriptor naming a
// factory already registered in internal/modularity, rather than an
// arbitrary script body.
package importer

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"gopkg.in/yaml.v2"
)

// SourceExt is the extension for a YAML-encoded, human-authored descriptor.
const SourceExt = ".module"

// BytecodeExt is the extension for a header-prefixed, gob-encoded
// descriptor, the stand-in for a precompiled module.
const BytecodeExt = ".modulec"

// bytecodeMagic identifies a .modulec file produced by this runtime. A
// mismatch means the file was compiled by an incompatible version and must
// be rejected outright.
var bytecodeMagic = [4]byte{'R', 'A', 'V', 'C'}

// Descriptor is the declarative description a resolved module file decodes
// into: which registered factory implements it, and the priority/provides/
// requires triple the modularity engine needs (see internal/modularity).
type Descriptor struct {
	Name     string                 `yaml:"name"`
	Factory  string                 `yaml:"factory"`
	Priority int                    `yaml:"priority,omitempty"`
	Provides []string               `yaml:"provides,omitempty"`
	Requires []string               `yaml:"requires,omitempty"`
	Config   map[string]interface{} `yaml:"config,omitempty"`
}

// decodeDescriptor picks the decoding path by extension.
func decodeDescriptor(path string, data []byte) (*Descriptor, error) {
	if hasExt(path, BytecodeExt) {
		return decodeBytecodeDescriptor(data)
	}
	return decodeSourceDescriptor(data)
}

func decodeSourceDescriptor(data []byte) (*Descriptor, error) {
	text, err := decodeSourceText(data)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := yaml.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("importer: invalid module descriptor: %w", err)
	}
	return &d, nil
}

func decodeBytecodeDescriptor(data []byte) (*Descriptor, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("importer: truncated bytecode module header")
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != bytecodeMagic {
		return nil, fmt.Errorf("importer: bytecode magic mismatch (incompatible runtime)")
	}
	_ = binary.LittleEndian.Uint32(data[4:8]) // timestamp, unused beyond the header check

	var d Descriptor
	dec := gob.NewDecoder(bytes.NewReader(data[8:]))
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("importer: corrupt bytecode module body: %w", err)
	}
	return &d, nil
}

// EncodeBytecode serialises d into the .modulec wire format: 4-byte magic,
// 4-byte little-endian timestamp, then a gob-encoded Descriptor. Used by
// tooling that precompiles .module sources; exercised directly by tests.
func EncodeBytecode(d *Descriptor, timestamp uint32) ([]byte, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(d); err != nil {
		return nil, err
	}

	out := make([]byte, 8, 8+body.Len())
	copy(out[:4], bytecodeMagic[:])
	binary.LittleEndian.PutUint32(out[4:8], timestamp)
	out = append(out, body.Bytes()...)
	return out, nil
}

func hasExt(path, ext string) bool {
	if len(path) < len(ext) {
		return false
	}
	return path[len(path)-len(ext):] == ext
}
