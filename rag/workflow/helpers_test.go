package workflow

import "github.com/sweetpotato0/radsafe/rag/grader"

func gradeOf(grounded, answers bool) grader.GenerationScore {
	return grader.GenerationScore{Grounded: grounded, AnswersQuestion: answers}
}
