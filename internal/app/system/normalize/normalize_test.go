package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Night Owl", "Night Owl"},
		{"  Night Owl  ", "Night Owl"},
		{"UPPER name", "UPPER name"}, // Name preserves case
		{"   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnum(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Up", "up"},
		{" IN-PROGRESS ", "in-progress"},
		{"pending", "pending"},
	}
	for _, tt := range tests {
		if got := Enum(tt.input); got != tt.want {
			t.Errorf("Enum(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
