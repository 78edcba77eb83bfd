package app

import (
	"strings"

	"live-quiz-service/internal/domain"
)

// evaluate judges a submitted answer against the question's correct-answer
// definition and returns (correct, awarded points, revealed correct answer).
//
// Choice questions match the correct option text exactly, case included.
// Fill-in-blank compares after trimming and lowercasing both sides, so
// " Paris " and "PARIS" both pass against "Paris".
func evaluate(question domain.Question, selected string) (bool, int, string) {
	points := question.Points
	if points == 0 {
		points = 1
	}

	var correct bool
	var revealed string

	switch question.Type {
	case domain.FillInBlank:
		revealed = question.CorrectAnswer
		correct = normalize(selected) == normalize(question.CorrectAnswer)
	default:
		for _, opt := range question.Options {
			if !opt.Correct {
				continue
			}
			if revealed == "" {
				revealed = opt.Text
			}
			if selected == opt.Text {
				correct = true
			}
		}
	}

	if !correct {
		points = 0
	}
	return correct, points, revealed
}

func normalize(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
