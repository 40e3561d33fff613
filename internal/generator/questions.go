package generator

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"studyforge/internal/models"
)

// ParseQuestionsJSON decodes an LLM question payload, tolerating markdown
// code fences. Undecodable payloads yield an empty slice rather than an
// error; question generation is best-effort.
func ParseQuestionsJSON(raw string) []models.Question {
	raw = stripCodeFence(strings.TrimSpace(raw))
	if raw == "" {
		return []models.Question{}
	}
	var payload struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return []models.Question{}
	}
	out := make([]models.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.QuestionText) == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

func fillQuestionDefaults(questions []models.Question, concepts []models.Concept) {
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.QuestionType == "" {
			q.QuestionType = "short_answer"
		}
		if q.Difficulty == "" {
			q.Difficulty = "medium"
		}
		if q.PageReference == "" {
			q.PageReference = pageForTopic(q.Topic, concepts)
		}
	}
}

func pageForTopic(topic string, concepts []models.Concept) string {
	tl := strings.ToLower(topic)
	for _, c := range concepts {
		if tl != "" && strings.Contains(tl, strings.ToLower(c.Term)) {
			return c.PageReference
		}
	}
	return "1"
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
