package trivia

import "context"

type mockQuestionSource struct {
	RandomQuestionsFunc func(ctx context.Context, n int) ([]SecretQuestion, error)
}

func (m mockQuestionSource) RandomQuestions(ctx context.Context, n int) ([]SecretQuestion, error) {
	return m.RandomQuestionsFunc(ctx, n)
}
