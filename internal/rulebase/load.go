package rulebase

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/riskgate/internal/model"
)

// Format is the serialization of a rule base document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format by file extension. Unknown extensions are YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Decode parses a document strictly: unknown keys are errors.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error

	switch format {
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = errors.New("document is empty")
		}
	}
	if err != nil {
		return nil, goerr.Wrap(model.ErrConfigurationLoad, "failed to parse rule base",
			goerr.V("format", string(format)), goerr.V("cause", err.Error()))
	}
	return &doc, nil
}

// Parse decodes, compiles and checks totality of a rule base document.
func Parse(data []byte, format Format) (*RuleBase, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	rb, err := doc.Compile()
	if err != nil {
		return nil, err
	}
	if err := CheckTotality(rb); err != nil {
		return nil, goerr.Wrap(model.ErrConfigurationLoad, "base rules are not total", goerr.V("cause", err.Error()))
	}
	rb.hash = hashBytes(data)
	return rb, nil
}

// Load reads a rule base from path. An empty path returns the built-in
// default. Any failure is ErrConfigurationLoad; there is no fallback to a
// partial or default rule base once a path is given.
func Load(path string) (*RuleBase, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(model.ErrConfigurationLoad, "failed to read rule base",
			goerr.V(model.PathKey, path), goerr.V("cause", err.Error()))
	}

	rb, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load rule base", goerr.V(model.PathKey, path))
	}
	return rb, nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
