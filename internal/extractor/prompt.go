package extractor

import "fmt"

const promptTemplate = `You are an AI summarization engine. Analyze the content of the provided PDF file: %s.
Your task is to return a single, valid JSON object containing exactly two keys: "summaries" and "questions".

1. "summaries": an array of JSON objects. Each object must include:
   - "title": a short descriptive string for the section or concept.
   - "summary": a concise description of that section.
   - "estimatedTime": a string like "2 minutes" estimating reading time.

2. "questions": an array of JSON objects. Each object must include:
   - "question": a flashcard-style question.
   - "answer": the correct answer to the question.

Requirements:
- Output ONLY the raw JSON object. No markdown, no backticks, no explanations.
- Do NOT include greetings, comments, or introductory/conclusion phrases.
- Escape all strings properly to ensure valid JSON.
- Provide 3-10 summaries and 5-15 questions depending on document complexity.

Example format:
{
  "summaries": [
    { "title": "Concept A", "summary": "Brief explanation of Concept A", "estimatedTime": "2 minutes" },
    { "title": "Method B", "summary": "Details about how Method B works", "estimatedTime": "5 minutes" }
  ],
  "questions": [
    { "question": "What is Concept A?", "answer": "Concept A is..." },
    { "question": "How does Method B work?", "answer": "Method B involves..." }
  ]
}`

// BuildPrompt returns the instruction text sent alongside the document.
func BuildPrompt(fileName string) string {
	if fileName == "" {
		fileName = "document.pdf"
	}
	return fmt.Sprintf(promptTemplate, fileName)
}
