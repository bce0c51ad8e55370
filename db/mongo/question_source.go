package mongo

import (
	"context"
	"fmt"

	"github.com/fanout-games/arcade/db"
	"github.com/fanout-games/arcade/game/trivia"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuestionSource draws random trivia questions from the triviaQuestions collection.
type QuestionSource struct {
	questions *mongo.Collection
	db.Config
}

// questionDocument is the stored form of a trivia question.
type questionDocument struct {
	QuestionID    string   `bson:"questionId"`
	Question      string   `bson:"question"`
	Options       []string `bson:"options"`
	CorrectAnswer int      `bson:"correctAnswer"`
}

// QuestionSource creates a source reading the triviaQuestions collection.
func (d *Database) QuestionSource() *QuestionSource {
	return &QuestionSource{
		questions: d.database.Collection(questionsCollectionName),
		Config:    d.Config,
	}
}

// RandomQuestions samples n random questions from the collection.
func (qs *QuestionSource) RandomQuestions(ctx context.Context, n int) ([]trivia.SecretQuestion, error) {
	pipeline := mongo.Pipeline{
		d(e("$sample", d(e("size", n)))),
	}
	ctx, cancelFunc := context.WithTimeout(ctx, qs.QueryPeriod)
	defer cancelFunc()
	cursor, err := qs.questions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sampling questions: %w", err)
	}
	var documents []questionDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	questions := make([]trivia.SecretQuestion, len(documents))
	for i, doc := range documents {
		q := trivia.SecretQuestion{
			CorrectAnswer: doc.CorrectAnswer,
		}
		q.QuestionID = doc.QuestionID
		q.Text = doc.Question
		q.Options = doc.Options
		questions[i] = q
	}
	return questions, nil
}
