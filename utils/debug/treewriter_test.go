package debug

import "testing"

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
	if tw.indent != defaultIndent {
		t.Errorf("indent = %q, want %q", tw.indent, defaultIndent)
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "blocks", want: "blocks\n"},
		{name: "depth 1", depth: 1, format: "block", want: "  block\n"},
		{name: "depth 2", depth: 2, format: "child", want: "    child\n"},
		{name: "with formatting", depth: 1, format: "key=%q depth=%d", args: []any{"a1", 2}, want: "  key=\"a1\" depth=2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_CustomIndent(t *testing.T) {
	tw := NewTreeWriterWithIndent("\t")
	tw.Line(2, "x")
	if got := tw.String(); got != "\t\tx\n" {
		t.Errorf("Line() = %q", got)
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{name: "empty value", depth: 0, label: "text", value: "", want: "text: \n"},
		{name: "plain", depth: 1, label: "text", value: "Hello world", want: "  text: \"Hello world\"\n"},
		{name: "single space", depth: 0, label: "text", value: " ", want: "text: \" \"\n"},
		{name: "line feed", depth: 0, label: "text", value: "a\nb", want: "text: \"a\\nb\"\n"},
		{name: "quotes", depth: 0, label: "title", value: `say "hi"`, want: "title: \"say \\\"hi\\\"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}
