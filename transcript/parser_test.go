package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctxrescue/ctxrescue/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []struct {
			role    types.Role
			content string
		}
	}{
		{
			name: "basic exchange",
			input: `User: how do I connect to postgres
Assistant: use a connection pool`,
			expected: []struct {
				role    types.Role
				content string
			}{
				{types.RoleUser, "how do I connect to postgres"},
				{types.RoleAssistant, "use a connection pool"},
			},
		},
		{
			name: "continuation lines",
			input: `User: here is my function
it spans
three lines
Assistant: looks fine`,
			expected: []struct {
				role    types.Role
				content string
			}{
				{types.RoleUser, "here is my function\nit spans\nthree lines"},
				{types.RoleAssistant, "looks fine"},
			},
		},
		{
			name: "uppercase prefixes",
			input: `USER: question
ASSISTANT: answer
SYSTEM: note`,
			expected: []struct {
				role    types.Role
				content string
			}{
				{types.RoleUser, "question"},
				{types.RoleAssistant, "answer"},
				{types.RoleSystem, "note"},
			},
		},
		{
			name: "preamble before first role ignored",
			input: `exported on 2026-08-01
User: hello`,
			expected: []struct {
				role    types.Role
				content string
			}{
				{types.RoleUser, "hello"},
			},
		},
		{
			name: "code fences inside a turn",
			input: `Assistant: try this
` + "```" + `
func main() {}
` + "```" + `
User: thanks`,
			expected: []struct {
				role    types.Role
				content string
			}{
				{types.RoleAssistant, "try this\n```\nfunc main() {}\n```"},
				{types.RoleUser, "thanks"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(messages) != len(tt.expected) {
				t.Fatalf("got %d messages, want %d", len(messages), len(tt.expected))
			}
			for i, want := range tt.expected {
				if messages[i].Role != want.role {
					t.Errorf("message %d role = %q, want %q", i, messages[i].Role, want.role)
				}
				if messages[i].Content != want.content {
					t.Errorf("message %d content = %q, want %q", i, messages[i].Content, want.content)
				}
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	messages, err := Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages, want 0", len(messages))
	}
}

func TestParseWhitespaceOnlyTurnDropped(t *testing.T) {
	messages, err := Parse("User:   \n\nAssistant: real content")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Role != types.RoleAssistant {
		t.Errorf("role = %q", messages[0].Role)
	}
}

func TestParseAssignsIdentity(t *testing.T) {
	messages, err := Parse("User: one\nUser: one")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].ID == messages[1].ID {
		t.Error("identical content must still get distinct IDs")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	content := "User: does parse file work\nAssistant: it reads from disk\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	messages, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("got %d messages, want 2", len(messages))
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
