package worker

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown fence",
			in:   "```markdown\n# Title\n\nBody text.\n```",
			want: "# Title\n\nBody text.",
		},
		{
			name: "bare fence",
			in:   "```\n# Title\n```",
			want: "# Title",
		},
		{
			name: "fence with trailing newline",
			in:   "```markdown\n# Title\n```\n",
			want: "# Title",
		},
		{
			name: "no fence",
			in:   "# Title\n\nBody text.\n",
			want: "# Title\n\nBody text.\n",
		},
		{
			name: "inner fences preserved",
			in:   "```markdown\nSome prose.\n\n```go\nfunc main() {}\n```\n\nMore prose.\n```",
			want: "Some prose.\n\n```go\nfunc main() {}\n```\n\nMore prose.",
		},
		{
			name: "unterminated fence left alone",
			in:   "```markdown\n# Title\n",
			want: "```markdown\n# Title\n",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
