// Package sanitize recovers the structured study material from raw model
// output.
//
// Models asked for "only JSON" still wrap it in markdown fences or add a line
// of prose. Parse strips what it can and then insists on a JSON object with
// a "summaries" array and a "questions" array. It does not judge entry
// contents; empty fields are caught later when the set is persisted.
package sanitize

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
)

// Result is the recovered study material. Both slices are non-nil.
type Result struct {
	Summaries []model.Summary  `json:"summaries"`
	Questions []model.Question `json:"questions"`
}

var openingFence = regexp.MustCompile("(?i)^```\\s*json\\s*")

// Parse turns raw model text into a Result.
//
// Steps, in order: trim; drop a leading ```json (or ``` json) fence; drop a
// trailing ``` fence; keep the text from the first '{' to the last '}';
// decode; require both arrays. Any failure is apperror.ErrMalformedAIResponse.
func Parse(raw string) (*Result, error) {
	text := strings.TrimSpace(raw)

	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "```json") || strings.HasPrefix(lower, "``` json") {
		text = openingFence.ReplaceAllString(text, "")
	}
	text = strings.TrimSuffix(text, "```")

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return nil, apperror.MalformedAIResponse("Could not find valid JSON structure in AI response.", nil)
	}
	text = text[first : last+1]

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, apperror.MalformedAIResponse("AI response is not valid JSON.", err)
	}

	summariesRaw, ok := arrayField(top, "summaries")
	if !ok {
		return nil, missingArrays()
	}
	questionsRaw, ok := arrayField(top, "questions")
	if !ok {
		return nil, missingArrays()
	}

	res := &Result{
		Summaries: []model.Summary{},
		Questions: []model.Question{},
	}
	if err := json.Unmarshal(summariesRaw, &res.Summaries); err != nil {
		return nil, apperror.MalformedAIResponse("AI response has malformed summaries.", err)
	}
	if err := json.Unmarshal(questionsRaw, &res.Questions); err != nil {
		return nil, apperror.MalformedAIResponse("AI response has malformed questions.", err)
	}

	return res, nil
}

// arrayField returns the raw value of key when it is present and a JSON array.
func arrayField(top map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := top[key]
	if !ok {
		return nil, false
	}
	v = bytes.TrimSpace(v)
	return v, len(v) > 0 && v[0] == '['
}

func missingArrays() error {
	return apperror.MalformedAIResponse("Parsed JSON is missing 'summaries' or 'questions' array.", nil)
}
