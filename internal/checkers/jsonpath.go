// Package checkers provides quicktest checkers shared by the test suites.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

// JSONPathEquals returns a checker that decodes the got JSON (a string or
// []byte), reads the value at path and compares it with the wanted value
// using qt.DeepEquals. JSON numbers decode as float64.
//
//	c.Assert(body, checkers.JSONPathEquals("$.tasks[0].difficulty"), float64(1))
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{
		path:     path,
		argNames: []string{"got", "want"},
	}
}

type jsonPathChecker struct {
	path     string
	argNames []string
}

// ArgNames implements qt.Checker.
func (c *jsonPathChecker) ArgNames() []string { return c.argNames }

// Check implements qt.Checker.
func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var data []byte
	switch v := got.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return qt.BadCheckf("first argument must be a JSON string or []byte, got %T", got)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("cannot decode JSON: %w", err)
	}
	value, err := jsonpath.Read(doc, c.path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", c.path, err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(value, args, note)
}
