package quiz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
	"title": "Vocabulary drill",
	"date": "2025-04-01",
	"items": [
		{
			"question": {"display": "dog", "reading": "dog", "spoken": "What animal says woof?"},
			"answer": "dog",
			"choices": ["dog", "cat", "bird"],
			"detail": {"display": "Dogs were domesticated over 15,000 years ago.", "spoken": "Dogs were domesticated over fifteen thousand years ago."}
		},
		{
			"question": {"display": "cat"},
			"answer": ""
		}
	]
}`

func TestParse(t *testing.T) {
	batch, err := Parse(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if batch.Title != "Vocabulary drill" {
		t.Errorf("Title = %q, want %q", batch.Title, "Vocabulary drill")
	}
	if batch.Date != "2025-04-01" {
		t.Errorf("Date = %q, want %q", batch.Date, "2025-04-01")
	}
	if len(batch.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(batch.Items))
	}
	if got := len(batch.Items[0].Choices); got != 3 {
		t.Errorf("len(Choices) = %d, want 3", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed JSON", `{"items": [`},
		{"no items", `{"title": "empty", "items": []}`},
		{"missing question text", `{"items": [{"question": {"display": ""}, "answer": "x"}]}`},
	}
	for _, tt := range tests {
		if _, err := Parse(strings.NewReader(tt.input)); err == nil {
			t.Errorf("%s: Parse() should return an error", tt.name)
		}
	}
}

func TestSpokenTextFallback(t *testing.T) {
	tests := []struct {
		name string
		text Text
		want string
	}{
		{"spoken wins", Text{Display: "a", Reading: "b", Spoken: "c"}, "c"},
		{"reading next", Text{Display: "a", Reading: "b"}, "b"},
		{"display last", Text{Display: "a"}, "a"},
		{"all empty", Text{}, ""},
	}
	for _, tt := range tests {
		if got := tt.text.SpokenText(); got != tt.want {
			t.Errorf("%s: SpokenText() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestItemSpeechSelection(t *testing.T) {
	batch, err := Parse(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}

	first := batch.Items[0]
	if got := first.QuestionSpeech(); got != "What animal says woof?" {
		t.Errorf("QuestionSpeech() = %q, want the spoken form", got)
	}
	if got := first.DetailSpeech(); !strings.Contains(got, "fifteen thousand") {
		t.Errorf("DetailSpeech() = %q, want the spoken detail form", got)
	}

	second := batch.Items[1]
	if got := second.QuestionSpeech(); got != "cat" {
		t.Errorf("QuestionSpeech() without spoken form = %q, want display fallback", got)
	}
	if got := second.AnswerSpeech(); got != "" {
		t.Errorf("AnswerSpeech() for empty answer = %q, want empty", got)
	}
	if got := second.DetailSpeech(); got != "" {
		t.Errorf("DetailSpeech() for missing detail = %q, want empty", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	batch, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(batch.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(batch.Items))
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load() on a missing file should return an error")
	}
}
