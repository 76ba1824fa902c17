// Package prompt holds the instructional template sent ahead of every question.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Template is immutable once built; callers share one value for the process lifetime.
type Template struct {
	text     string
	examples []string
}

func New(text string, examples []string) (Template, error) {
	if strings.TrimSpace(text) == "" {
		return Template{}, fmt.Errorf("prompt template text is required")
	}
	copied := make([]string, 0, len(examples))
	for _, example := range examples {
		if example = strings.TrimSpace(example); example != "" {
			copied = append(copied, example)
		}
	}
	return Template{text: text, examples: copied}, nil
}

// Default returns the built-in employee database template.
func Default() Template {
	return Template{text: employeeTemplate, examples: append([]string(nil), employeeExamples...)}
}

// LoadFile reads a template from disk. Lines of the form "#? question" are collected as
// UI example questions and dropped from the model text.
func LoadFile(path string) (Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read prompt file %q: %w", path, err)
	}

	var body strings.Builder
	var examples []string
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "#?") {
			examples = append(examples, strings.TrimSpace(strings.TrimPrefix(trimmed, "#?")))
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return Template{}, fmt.Errorf("scan prompt file %q: %w", path, err)
	}
	return New(body.String(), examples)
}

func (t Template) Text() string {
	return t.text
}

func (t Template) Examples() []string {
	return append([]string(nil), t.examples...)
}

// Build concatenates the template and the question into a single model input.
func (t Template) Build(question string) string {
	text := strings.TrimRight(t.text, "\n")
	return text + "\n" + question
}
