package scene

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/panelpush/pkg/errors"
)

// Format is a scene or report file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in the order they are documented.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format from %q (want .toml, .yaml, .yml or .json)", filepath.Base(path))
}

// ParseFormat parses a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTOML, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

func decode(data []byte, format Format, v any) error {
	var err error
	switch format {
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), v)
		if undecoded := md.Undecoded(); err == nil && len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "decode toml: unknown field %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(v)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return nil
}

func encode(v any, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(&buf).Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(v)
		if err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return buf.Bytes(), nil
}
