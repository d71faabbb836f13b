package pdf

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the print presets for exported documents. They ship with
// A4/RTL defaults and can be overridden from a YAML file.
type Options struct {
	Format          string `yaml:"format"`
	MarginTop       string `yaml:"margin_top"`
	MarginBottom    string `yaml:"margin_bottom"`
	MarginLeft      string `yaml:"margin_left"`
	MarginRight     string `yaml:"margin_right"`
	PrintBackground bool   `yaml:"print_background"`
	FooterTemplate  string `yaml:"footer_template"`
	NavTimeoutMs    int    `yaml:"nav_timeout_ms"`
}

func DefaultOptions() Options {
	return Options{
		Format:          "A4",
		MarginTop:       "20mm",
		MarginBottom:    "20mm",
		MarginLeft:      "15mm",
		MarginRight:     "15mm",
		PrintBackground: true,
		NavTimeoutMs:    15000,
	}
}

// LoadOptions overlays the YAML preset file on the defaults. A missing
// file is not an error; a broken one is.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), err
	}
	return opts, nil
}
