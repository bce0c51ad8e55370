package trivia

import (
	"context"
	"fmt"
	"math/rand"
)

// Bank is an in-memory QuestionSource.  It backs games when no question
// database is configured and keeps tests hermetic.
type Bank struct {
	questions []SecretQuestion
}

// NewBank creates a bank after checking every question is answerable.
func NewBank(questions []SecretQuestion) (*Bank, error) {
	for i, q := range questions {
		switch {
		case q.QuestionID == "":
			return nil, fmt.Errorf("creating question bank: question %v: id required", i)
		case len(q.Options) != 4:
			return nil, fmt.Errorf("creating question bank: question %v: four options required", i)
		case q.CorrectAnswer < 0 || q.CorrectAnswer > 3:
			return nil, fmt.Errorf("creating question bank: question %v: correct answer out of range", i)
		}
	}
	b := Bank{
		questions: questions,
	}
	return &b, nil
}

// DefaultBank creates a bank with the built-in questions.
func DefaultBank() *Bank {
	b, err := NewBank(defaultQuestions)
	if err != nil {
		panic(fmt.Errorf("default question bank is invalid: %w", err)) // unreachable
	}
	return b
}

// RandomQuestions returns n distinct questions from the bank in random order.
func (b *Bank) RandomQuestions(_ context.Context, n int) ([]SecretQuestion, error) {
	if n > len(b.questions) {
		return nil, fmt.Errorf("question bank has %v questions, wanted %v", len(b.questions), n)
	}
	shuffled := make([]SecretQuestion, len(b.questions))
	copy(shuffled, b.questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n], nil
}

// defaultQuestions seed games when no external question collection is configured.
var defaultQuestions = []SecretQuestion{
	bankQuestion("bank-01", "Which planet is closest to the sun?", 1, "Venus", "Mercury", "Mars", "Earth"),
	bankQuestion("bank-02", "How many continents are there?", 2, "five", "six", "seven", "eight"),
	bankQuestion("bank-03", "What is the chemical symbol for gold?", 0, "Au", "Ag", "Gd", "Go"),
	bankQuestion("bank-04", "Which ocean is the largest?", 3, "Atlantic", "Indian", "Arctic", "Pacific"),
	bankQuestion("bank-05", "How many sides does a hexagon have?", 1, "five", "six", "seven", "eight"),
	bankQuestion("bank-06", "Which language has the most native speakers?", 2, "English", "Hindi", "Mandarin", "Spanish"),
	bankQuestion("bank-07", "What is the largest mammal?", 0, "blue whale", "elephant", "giraffe", "orca"),
	bankQuestion("bank-08", "In which year did the first moon landing happen?", 1, "1967", "1969", "1971", "1973"),
	bankQuestion("bank-09", "What is the capital of Australia?", 3, "Sydney", "Melbourne", "Perth", "Canberra"),
	bankQuestion("bank-10", "Which element has the atomic number 1?", 0, "hydrogen", "helium", "oxygen", "carbon"),
	bankQuestion("bank-11", "How many keys does a standard piano have?", 2, "76", "84", "88", "92"),
	bankQuestion("bank-12", "Which country hosted the 2016 Summer Olympics?", 1, "China", "Brazil", "Japan", "Greece"),
	bankQuestion("bank-13", "What is the square root of 144?", 0, "12", "14", "16", "18"),
	bankQuestion("bank-14", "Which instrument has 47 strings?", 3, "violin", "cello", "guitar", "harp"),
	bankQuestion("bank-15", "What is the longest river in the world?", 1, "Amazon", "Nile", "Yangtze", "Mississippi"),
	bankQuestion("bank-16", "How many bones are in the adult human body?", 2, "186", "196", "206", "216"),
}

func bankQuestion(id, text string, correctAnswer int, options ...string) SecretQuestion {
	q := SecretQuestion{
		CorrectAnswer: correctAnswer,
	}
	q.QuestionID = id
	q.Text = text
	q.Options = options
	return q
}
