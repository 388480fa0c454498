package learning

import "strconv"

type Quiz struct {
	ID         int      `json:"id"`
	Category   string   `json:"category"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	IsAnswered bool     `json:"is_answered"`
}

type TodayQuiz struct {
	HasQuiz               bool   `json:"has_quiz"`
	Message               string `json:"message,omitempty"`
	Quiz                  *Quiz  `json:"quiz,omitempty"`
	IsPointEligible       *bool  `json:"is_point_eligible,omitempty"`
	RemainingPointChances *int   `json:"remaining_point_chances,omitempty"`
}

type AnswerRequest struct {
	QuizID        int `json:"quiz_id" validate:"required"`
	SelectedIndex int `json:"selected_index" validate:"min=0"`
}

type AnswerResult struct {
	IsCorrect             bool   `json:"is_correct"`
	CorrectAnswerIndex    *int   `json:"correct_answer_index"`
	Explanation           string `json:"explanation"`
	PointsEarned          int    `json:"points_earned"`
	RemainingPointChances int    `json:"remaining_point_chances"`
}

type Outcome int

const (
	Incorrect Outcome = iota
	Correct
	LimitReached // correct, but the daily point chances are used up
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case LimitReached:
		return "limit reached"
	}
	return "incorrect"
}

func (r AnswerResult) Outcome() Outcome {
	switch {
	case r.IsCorrect && r.PointsEarned == 0:
		return LimitReached
	case r.IsCorrect:
		return Correct
	}
	return Incorrect
}

// ShowCorrectAnswer reports whether the correct-answer panel is rendered.
func (r AnswerResult) ShowCorrectAnswer() bool {
	return r.CorrectAnswerIndex != nil
}

var optionLabels = []string{"A", "B", "C", "D", "E"}

// OptionLabel is the label of the i-th option: A to E, then its 1-based position.
func OptionLabel(i int) string {
	if i >= 0 && i < len(optionLabels) {
		return optionLabels[i]
	}
	return strconv.Itoa(i + 1)
}
