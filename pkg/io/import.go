package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/layerstack/pkg/errors"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension (.json or .toml,
// case-insensitive). Other extensions yield an INVALID_FORMAT error.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported document extension %q (use .json or .toml)", filepath.Ext(path))
}

// ReadJSON decodes a JSON style document from r:
//
//	{
//	  "version": 1,
//	  "name": "streets",
//	  "layers": [
//	    {"id": "water", "type": "fill"},
//	    {"id": "road-minor", "type": "line", "metadata": {"group": "roads"}}
//	  ]
//	}
//
// The decoded document is validated; a missing version reads as
// [FormatVersion]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
	}
	return normalize(&d)
}

// ReadTOML decodes a TOML style document from r. Layers are an array of
// tables:
//
//	version = 1
//	name = "streets"
//
//	[[layers]]
//	id = "road-minor"
//	type = "line"
//	[layers.metadata]
//	group = "roads"
//
// Integers inside paint, layout and metadata decode as int64, unlike JSON
// which yields float64.
func ReadTOML(r io.Reader) (*Document, error) {
	var d Document
	if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml")
	}
	return normalize(&d)
}

// Read decodes a document in the given format.
func Read(r io.Reader, f Format) (*Document, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", f)
}

// Import reads the document at path, choosing the codec by extension.
func Import(path string) (*Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeDocumentNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	d, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
