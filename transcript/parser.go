// Package transcript parses plain-text conversation transcripts into
// message sequences.
//
// The supported format labels each turn with a role prefix:
//
//	User: how do I ...
//	Assistant: you can ...
//
// Continuation lines belong to the preceding turn. Parsing happens once
// at the boundary; everything downstream works on the in-memory
// sequence.
package transcript

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ctxrescue/ctxrescue/types"
)

// rolePrefixes maps recognized line prefixes to roles.
var rolePrefixes = []struct {
	prefix string
	role   types.Role
}{
	{"User:", types.RoleUser},
	{"USER:", types.RoleUser},
	{"Assistant:", types.RoleAssistant},
	{"ASSISTANT:", types.RoleAssistant},
	{"System:", types.RoleSystem},
	{"SYSTEM:", types.RoleSystem},
}

// ParseFile reads and parses a transcript file.
func ParseFile(path string) ([]*types.Message, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return Parse(string(content))
}

// Parse parses transcript text into an ordered message sequence. Text
// before the first role prefix is ignored. An empty transcript yields an
// empty sequence, not an error.
func Parse(content string) ([]*types.Message, error) {
	var messages []*types.Message
	var currentRole types.Role
	var currentLines []string

	flush := func() {
		if currentRole == "" || len(currentLines) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(currentLines, "\n"))
		if text != "" {
			messages = append(messages, types.NewMessage(currentRole, text))
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if role, rest, ok := matchRolePrefix(line); ok {
			flush()
			currentRole = role
			currentLines = nil
			if rest != "" {
				currentLines = append(currentLines, rest)
			}
			continue
		}

		if currentRole != "" {
			currentLines = append(currentLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	flush()

	return messages, nil
}

func matchRolePrefix(line string) (types.Role, string, bool) {
	for _, rp := range rolePrefixes {
		if strings.HasPrefix(line, rp.prefix) {
			return rp.role, strings.TrimSpace(line[len(rp.prefix):]), true
		}
	}
	return "", "", false
}
