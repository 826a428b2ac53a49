package config

import (
	"gopkg.in/yaml.v3"
)

// SampleYAML renders the default configuration as a commented starting
// point for a .crate-checker.yml file.
func SampleYAML() string {
	header := "# crate-checker configuration\n" +
		"# Environment variables override file values using the\n" +
		"# CRATE_CHECKER_ prefix, e.g. CRATE_CHECKER_SERVER_PORT=8080.\n"

	out, err := yaml.Marshal(Default())
	if err != nil {
		return header
	}
	return header + string(out)
}
