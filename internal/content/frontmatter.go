package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a leading YAML block delimited by "---" lines
// from the document body. ok is false when there is no front matter.
func splitFrontMatter(data []byte) (front []byte, body string, ok bool) {
	s := strings.TrimPrefix(string(data), "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return nil, s, false
	}
	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, s, false
	}
	front = []byte(rest[:end])
	body = rest[end+len("\n---"):]
	// drop the remainder of the closing delimiter line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return front, strings.TrimLeft(body, "\n"), true
}

// decodeFrontMatter unmarshals the front matter of data into v and returns the body.
func decodeFrontMatter(data []byte, v any) (string, error) {
	front, body, ok := splitFrontMatter(data)
	if !ok {
		return body, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(front))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("parse front matter: %w", err)
	}
	return body, nil
}
