// Package prompt holds the instruction template sent with every inference request.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// DefaultInstruction asks the service for one {product_name, index} object per
// link, in link order, as a single JSON array and nothing else.
const DefaultInstruction = `You are a tool that judges the carbon emissions of products based on their materials, weights, and countries of origin. ` +
	`You are given one or more product links separated by commas. ` +
	`Reply with EXACTLY this format and nothing else, without new lines: ` +
	`[{"product_name": <a two to six word summary of the product name>, "index": <a number from 0.10 to 0.90 comparing how carbon friendly the products are relative to each other, lower meaning more emissions and higher meaning fewer emissions>}, ...] ` +
	`Return one object per link, in the same order as the links. The length of the list must equal the number of links given.`

// SourceDefault is reported by Source when no template file is in use.
const SourceDefault = "default"

// Template is the current instruction text. It is safe for concurrent use and
// can be swapped at runtime when the backing file changes.
type Template struct {
	mu     sync.RWMutex
	text   string
	source string
}

// NewTemplate returns a template holding DefaultInstruction.
func NewTemplate() *Template {
	return &Template{text: DefaultInstruction, source: SourceDefault}
}

// LoadFile returns a template read from path. An empty path yields the default template.
func LoadFile(path string) (*Template, error) {
	t := NewTemplate()
	if path == "" {
		return t, nil
	}
	if err := t.Reload(path); err != nil {
		return nil, err
	}
	return t, nil
}

// Text returns the current instruction.
func (t *Template) Text() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.text
}

// Source returns the file the instruction was read from, or SourceDefault.
func (t *Template) Source() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source
}

// Reload replaces the instruction with the contents of path. On error the
// current instruction is kept.
func (t *Template) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read prompt file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("prompt file %s is empty", path)
	}
	t.mu.Lock()
	t.text = text
	t.source = path
	t.mu.Unlock()
	return nil
}
