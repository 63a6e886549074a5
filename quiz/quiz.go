// Package quiz defines the quiz batch data model and its JSON loader.
//
// A batch is loaded once from a file and is immutable afterwards; reloading
// replaces the whole batch. Each item carries display text for the UI and
// optional reading/spoken variants that decide what is sent to the speech
// service.
package quiz

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Text is one piece of quiz text in up to three forms: the display form shown
// on screen, an optional transliteration, and an optional spoken script used
// for speech synthesis.
type Text struct {
	Display string `json:"display"`
	Reading string `json:"reading,omitempty"`
	Spoken  string `json:"spoken,omitempty"`
}

// SpokenText returns the text to hand to the speech service: the spoken
// script when present, else the reading, else the display form.
func (t Text) SpokenText() string {
	if t.Spoken != "" {
		return t.Spoken
	}
	if t.Reading != "" {
		return t.Reading
	}
	return t.Display
}

// Item is one quiz entry. The ordinal position is its index in the batch.
type Item struct {
	Question Text     `json:"question"`
	Answer   string   `json:"answer"`
	Choices  []string `json:"choices,omitempty"`
	Detail   Text     `json:"detail,omitempty"`
}

// QuestionSpeech returns the question text for synthesis. Never empty for a
// validated batch.
func (it Item) QuestionSpeech() string {
	return it.Question.SpokenText()
}

// AnswerSpeech returns the answer text for synthesis. May be empty, in which
// case the item has no answer clip.
func (it Item) AnswerSpeech() string {
	return it.Answer
}

// DetailSpeech returns the supplementary detail text for synthesis. May be
// empty, in which case the item has no detail clip.
func (it Item) DetailSpeech() string {
	return it.Detail.SpokenText()
}

// Batch is one loaded quiz file.
type Batch struct {
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
	Items []Item `json:"items"`
}

// Load reads and parses a quiz batch file.
func Load(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open quiz file: %w", err)
	}
	defer f.Close()

	batch, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz file %q: %w", path, err)
	}
	return batch, nil
}

// Parse decodes a quiz batch from JSON and validates it.
func Parse(r io.Reader) (*Batch, error) {
	var batch Batch
	dec := json.NewDecoder(r)
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to parse quiz JSON: %w", err)
	}

	if len(batch.Items) == 0 {
		return nil, fmt.Errorf("quiz batch contains no items")
	}
	for i, item := range batch.Items {
		if item.Question.Display == "" {
			return nil, fmt.Errorf("item %d has no question text", i+1)
		}
	}
	return &batch, nil
}
