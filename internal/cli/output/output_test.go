package output

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Kind    string         `json:"kind"`
	TTL     int64          `json:"ttl_ms"`
	Payload map[string]any `json:"payload,omitempty"`
}

type tabular struct{}

func (tabular) Table() *Table {
	return &Table{Headers: []string{"KIND"}, Rows: [][]string{{"wallet-connect"}}}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want []string
	}{
		{"table", &Table{Headers: []string{"NAME"}, Rows: [][]string{{"x"}}}, []string{"NAME", "x"}},
		{"tabular", tabular{}, []string{"KIND", "wallet-connect"}},
		{"struct", sample{Kind: "external-payment", TTL: 1800000}, []string{"FIELD", "kind", "external-payment", "ttl_ms", "1800000"}},
		{"nested payload", sample{Kind: "k", Payload: map[string]any{"provider": "moonpay"}}, []string{`{"provider":"moonpay"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TableFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output %q missing %q", buf.String(), s)
				}
			}
		})
	}
}

func TestTableFormatter_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, &Table{Headers: []string{"NAME"}, Rows: [][]string{{"x"}}}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Errorf("output %q contains header", buf.String())
	}
}

func TestTableFormatter_NonObjectFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []string{"a", "b"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"a"`) {
		t.Errorf("output %q, want JSON array", buf.String())
	}
}

func TestYAMLFormatter_UsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, sample{Kind: "wallet-connect", TTL: 300000}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, s := range []string{"kind: wallet-connect", "ttl_ms: 300000"} {
		if !strings.Contains(out, s) {
			t.Errorf("output %q missing %q", out, s)
		}
	}
	if strings.Contains(out, "payload") {
		t.Errorf("output %q contains omitted payload", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, sample{Kind: "k"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"kind": "k"`) {
		t.Errorf("output %q, want indented JSON", buf.String())
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{"x", "x"},
		{float64(8453), "8453"},
		{1.5, "1.5"},
		{true, "true"},
		{map[string]any{}, "-"},
		{[]any{1, 2}, "[2 items]"},
	}

	for _, tt := range tests {
		if got := Cell(tt.in); got != tt.want {
			t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
