// README: Optional YAML route table loaded at startup on top of the built-in routes.
package routes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Routes []Entry `yaml:"routes"`
}

// LoadFile reads a YAML document of the form:
//
//	routes:
//	  - origin: Benidorm
//	    destination: Finestrat
//	    minutes: 15
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	return ParseFile(data)
}

func ParseFile(data []byte) ([]Entry, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	for i, e := range f.Routes {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("route %d (%s - %s): %w", i, e.Origin, e.Destination, err)
		}
	}
	return f.Routes, nil
}
