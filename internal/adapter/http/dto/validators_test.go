package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSafeID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"ref-001", true},
		{"order_2024.01", true},
		{"ABC123", true},
		{"ref 001", false},
		{"ref;drop", false},
		{"<script>", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeStringRe.MatchString(tt.input), "input %q", tt.input)
	}
}

func TestSanitizeStruct(t *testing.T) {
	notes := "  <b>note</b>  "
	req := &struct {
		Name  string
		Notes *string
	}{
		Name:  "  hello  ",
		Notes: &notes,
	}

	SanitizeStruct(req)

	assert.Equal(t, "hello", req.Name)
	assert.Equal(t, "&lt;b&gt;note&lt;/b&gt;", *req.Notes)
}

func TestSanitizeStruct_NonStructPointer(t *testing.T) {
	// Must not panic on non-struct input.
	s := "plain"
	SanitizeStruct(&s)
	SanitizeStruct(nil)
	assert.Equal(t, "plain", s)
}
