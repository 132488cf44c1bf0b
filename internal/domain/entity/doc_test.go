package entity

import "testing"

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{17.3, 1},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRetrievedDoc(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		url     string
		snippet string
		score   float64
		wantErr bool
	}{
		{"valid", "Post", "https://example.org/a", "snippet text", 0.9, false},
		{"missing url", "Post", "", "snippet text", 0.9, true},
		{"missing title", "", "https://example.org/a", "snippet text", 0.9, true},
		{"missing snippet", "Post", "https://example.org/a", "  ", 0.9, true},
		{"score above one clamped", "Post", "https://example.org/a", "snippet", 2.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewRetrievedDoc("id", tt.title, tt.url, tt.snippet, tt.score, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRetrievedDoc() error = %v", err)
			}
			if doc.Score < 0 || doc.Score > 1 {
				t.Errorf("score %v outside [0,1]", doc.Score)
			}
		})
	}
}
