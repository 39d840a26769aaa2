// Package config loads the .pagemark.yml project file that seeds the page
// toolbar defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eykd/pagemark-go/internal/extension"
	"github.com/eykd/pagemark-go/internal/page"
	"github.com/eykd/pagemark-go/internal/pagination"
	"github.com/eykd/pagemark-go/internal/toolbar"
)

// FileName is the configuration file looked up in the project directory.
const FileName = ".pagemark.yml"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// readFileFn is replaced in tests to inject read failures.
var readFileFn = os.ReadFile

// Config holds the editor defaults. Absent keys keep their Default value.
type Config struct {
	PageSize        page.SizeID `yaml:"pageSize"`
	Zoom            int         `yaml:"zoom"`
	HeaderFooter    bool        `yaml:"headerFooter"`
	Margins         bool        `yaml:"margins"`
	Rulers          bool        `yaml:"rulers"`
	CharacterCount  bool        `yaml:"characterCount"`
	Watermark       bool        `yaml:"watermark"`
	WatermarkText   string      `yaml:"watermarkText"`
	RenumberOnBreak bool        `yaml:"renumberOnBreak"`
	ScrollThreshold float64     `yaml:"scrollThreshold"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PageSize:        page.A4,
		Zoom:            page.DefaultZoom,
		HeaderFooter:    true,
		Margins:         true,
		CharacterCount:  true,
		WatermarkText:   extension.DefaultWatermarkText,
		RenumberOnBreak: true,
		ScrollThreshold: pagination.DefaultScrollThreshold,
	}
}

// Load reads path. A missing file yields Default.
func Load(path string) (Config, error) {
	data, err := readFileFn(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unknown page sizes and zoom levels.
func (c Config) Validate() error {
	if _, ok := page.Lookup(c.PageSize); !ok {
		return fmt.Errorf("%w: pageSize %q", ErrInvalid, c.PageSize)
	}
	if !page.ValidZoom(c.Zoom) {
		return fmt.Errorf("%w: zoom %d", ErrInvalid, c.Zoom)
	}
	if c.ScrollThreshold < 0 {
		return fmt.Errorf("%w: scrollThreshold %v", ErrInvalid, c.ScrollThreshold)
	}
	return nil
}

// Marshal renders c as a commented YAML file.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# pagemark project configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// State returns the toolbar configuration c describes.
func (c Config) State() toolbar.State {
	s := toolbar.State{
		PageSize:              c.PageSize,
		Zoom:                  c.Zoom,
		HeaderFooterVisible:   c.HeaderFooter,
		MarginsVisible:        c.Margins,
		RulersVisible:         c.Rulers,
		CharacterCountVisible: c.CharacterCount,
		WatermarkEnabled:      c.Watermark,
		WatermarkText:         c.WatermarkText,
	}
	pad := page.MinimalMargin
	if c.Margins {
		pad = s.Size().Padding
	}
	s.Margins = page.Uniform(pad)
	return s
}

// ControllerOptions returns the toolbar options c implies.
func (c Config) ControllerOptions() []toolbar.Option {
	return []toolbar.Option{
		toolbar.WithState(c.State()),
		toolbar.WithRenumberOnBreak(c.RenumberOnBreak),
	}
}
