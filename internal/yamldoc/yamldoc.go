// Package yamldoc loads a TAP diagnostic block's YAML text into a plain
// map, for attachment to an Assertion's Diag field.
package yamldoc

import "gopkg.in/yaml.v3"

// Load parses text as a YAML mapping document. An empty or whitespace-only
// document decodes to a nil map with no error: an empty diagnostic block
// is valid YAML, not a parse failure.
func Load(text string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
