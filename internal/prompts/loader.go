// Package prompts holds the LLM prompt templates. They are stored as JSON
// files and embedded at compile time.
package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Pair is a system prompt and a user prompt template.
type Pair struct {
	System string `json:"system"`
	User   string `json:"user"`
}

var upskill = sync.OnceValues(func() (Pair, error) {
	return Load("upskill.json")
})

// Load reads a prompt pair from the embedded files. Both prompts must be
// present.
func Load(filename string) (Pair, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var p Pair
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pair{}, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	switch {
	case p.System == "":
		return Pair{}, fmt.Errorf("prompt file %s: system prompt is empty", filename)
	case p.User == "":
		return Pair{}, fmt.Errorf("prompt file %s: user prompt is empty", filename)
	}
	return p, nil
}

// Upskill returns the upskilling suggestion prompts. It panics if the
// embedded file is unusable, which only a broken build can cause.
func Upskill() Pair {
	p, err := upskill()
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return p
}

// Format replaces {{.Key}} placeholders with values from data. Unknown
// placeholders are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
