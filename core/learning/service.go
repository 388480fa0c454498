package learning

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
)

type Service struct {
	backend core.Backend
}

func NewService(backend core.Backend) *Service {
	return &Service{backend: backend}
}

// Today fetches the quiz of the day. The backend is known to be slow here.
func (svc *Service) Today(ctx context.Context, classID int) (TodayQuiz, error) {
	var today TodayQuiz
	err := svc.backend.Do(
		ctx,
		http.MethodGet,
		fmt.Sprintf("/classes/%d/learning/today", classID),
		nil,
		&today,
		core.WithLongTimeout(),
	)
	return today, errors.Wrap(err, "fetching today's quiz")
}

func (svc *Service) Submit(ctx context.Context, classID int, req AnswerRequest) (AnswerResult, error) {
	var res AnswerResult
	err := svc.backend.Do(
		ctx,
		http.MethodPost,
		fmt.Sprintf("/classes/%d/learning/quiz/answer", classID),
		req,
		&res,
		core.WithLongTimeout(),
	)
	return res, errors.Wrap(err, "submitting answer")
}
