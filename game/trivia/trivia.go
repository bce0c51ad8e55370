// Package trivia implements the head-to-head quiz variant: both players answer
// the same ten questions and the higher score wins.
package trivia

import (
	"context"
	"fmt"

	"github.com/fanout-games/arcade/game"
)

// NumQuestions is the fixed number of questions in every game.
const NumQuestions = 10

type (
	// Game is a trivia game.  It is not safe for concurrent use; the manager
	// serializes access to it.
	Game struct {
		id        game.ID
		createdBy game.PlayerID
		players   []game.PlayerID
		state     game.State
		// correctAnswers is parallel to state.Questions.  It is never part of
		// the model sent to players, only of the persisted snapshot.
		correctAnswers []int
		source         QuestionSource
	}

	// QuestionSource provides random questions for new games.
	QuestionSource interface {
		// RandomQuestions returns n distinct questions with their answers.
		RandomQuestions(ctx context.Context, n int) ([]SecretQuestion, error)
	}

	// SecretQuestion is a question together with its correct option index.
	SecretQuestion struct {
		game.Question
		// CorrectAnswer is the index of the correct option.
		CorrectAnswer int
	}
)

// New creates an empty trivia game.  Questions are not fetched until Start.
func New(id game.ID, createdBy game.PlayerID, source QuestionSource) (*Game, error) {
	if source == nil {
		return nil, fmt.Errorf("creating trivia game: question source required")
	}
	g := Game{
		id:        id,
		createdBy: createdBy,
		state: game.State{
			Status:         game.WaitingToStart,
			Player1Answers: []int{},
			Player2Answers: []int{},
		},
		source: source,
	}
	return &g, nil
}

// FromSnapshot restores a trivia game from its persisted form.
// The snapshot's correct answers keep move validation working after a restart.
func FromSnapshot(snap game.Snapshot, source QuestionSource) (*Game, error) {
	if snap.GameType != game.TypeTrivia {
		return nil, fmt.Errorf("restoring trivia game: snapshot has type %q", snap.GameType)
	}
	if source == nil {
		return nil, fmt.Errorf("restoring trivia game: question source required")
	}
	if snap.State.Status == game.InProgress && len(snap.CorrectAnswers) != len(snap.State.Questions) {
		return nil, fmt.Errorf("restoring trivia game %v: snapshot has %v answers for %v questions",
			snap.GameID, len(snap.CorrectAnswers), len(snap.State.Questions))
	}
	if snap.State.Status == game.InProgress && snap.State.CurrentQuestionIndex >= len(snap.State.Questions) {
		return nil, fmt.Errorf("restoring trivia game %v: snapshot question index %v is out of range for %v questions",
			snap.GameID, snap.State.CurrentQuestionIndex, len(snap.State.Questions))
	}
	snap = snap.Copy()
	g := Game{
		id:             snap.GameID,
		createdBy:      snap.CreatedBy,
		players:        snap.Players,
		state:          snap.State,
		correctAnswers: snap.CorrectAnswers,
		source:         source,
	}
	return &g, nil
}

// ID implements game.Game.
func (g *Game) ID() game.ID {
	return g.id
}

// Type implements game.Game.
func (g *Game) Type() game.Type {
	return game.TypeTrivia
}

// Players implements game.Game.
func (g *Game) Players() []game.PlayerID {
	players := make([]game.PlayerID, len(g.players))
	copy(players, g.players)
	return players
}

// CreatedBy implements game.Game.
func (g *Game) CreatedBy() game.PlayerID {
	return g.createdBy
}

// Join adds the player to the first open slot.  Unlike Nim, filling both
// slots does not start the game; Start must be called.
func (g *Game) Join(playerID game.PlayerID) error {
	switch {
	case g.state.Status != game.WaitingToStart:
		return fmt.Errorf("cannot join game: already started: %w", game.ErrInvalidState)
	case g.hasPlayer(playerID):
		return fmt.Errorf("cannot join game: %w", game.ErrDuplicatePlayer)
	}
	s := g.state.Copy()
	switch {
	case s.Player1 == "":
		s.Player1 = playerID
	default:
		s.Player2 = playerID
	}
	g.players = append(g.players, playerID)
	g.state = s
	return nil
}

// Start fetches the game's questions and begins play.
func (g *Game) Start(ctx context.Context) error {
	switch {
	case g.state.Status != game.WaitingToStart:
		return fmt.Errorf("cannot start game: already started: %w", game.ErrInvalidState)
	case g.state.Player1 == "" || g.state.Player2 == "":
		return fmt.Errorf("cannot start game: both player slots must be filled: %w", game.ErrInvalidState)
	}
	secretQuestions, err := g.source.RandomQuestions(ctx, NumQuestions)
	if err != nil {
		return fmt.Errorf("fetching questions: %w", err)
	}
	if len(secretQuestions) != NumQuestions {
		return fmt.Errorf("fetching questions: wanted %v, got %v", NumQuestions, len(secretQuestions))
	}
	questions := make([]game.Question, len(secretQuestions))
	correctAnswers := make([]int, len(secretQuestions))
	for i, q := range secretQuestions {
		questions[i] = q.Question
		correctAnswers[i] = q.CorrectAnswer
	}
	s := g.state.Copy()
	s.Status = game.InProgress
	s.Questions = questions
	s.CurrentQuestionIndex = 0
	g.correctAnswers = correctAnswers
	g.state = s
	return nil
}

// Leave removes the player.  Leaving a game in progress forfeits it, making
// the remaining player the winner.
func (g *Game) Leave(playerID game.PlayerID) error {
	if !g.hasPlayer(playerID) {
		return fmt.Errorf("cannot leave game: player %v: %w", playerID, game.ErrNotInGame)
	}
	s := g.state.Copy()
	switch playerID {
	case s.Player1:
		s.Player1 = ""
	case s.Player2:
		s.Player2 = ""
	}
	if s.Status == game.InProgress {
		s.Status = game.Over
		remaining := s.Player1
		if remaining == "" {
			remaining = s.Player2
		}
		if remaining != "" {
			s.Winners = []game.PlayerID{remaining}
		}
	}
	g.players = removePlayer(g.players, playerID)
	g.state = s
	return nil
}

// ApplyMove records the player's answer to the current question.  The question
// index advances when both players have answered; answering the final question
// for both players ends the game.
func (g *Game) ApplyMove(m game.Move) error {
	s := g.state
	switch {
	case s.Status != game.InProgress:
		return fmt.Errorf("%w: game is not in progress", game.ErrInvalidMove)
	case !g.hasPlayer(m.PlayerID):
		return fmt.Errorf("%w: player not in game", game.ErrInvalidMove)
	case m.Move.AnswerIndex == nil || *m.Move.AnswerIndex < 0 || *m.Move.AnswerIndex > 3:
		return fmt.Errorf("%w: answer index must be between 0 and 3", game.ErrInvalidMove)
	case m.Move.QuestionID != s.Questions[s.CurrentQuestionIndex].QuestionID:
		return fmt.Errorf("%w: question ID does not match the current question", game.ErrInvalidMove)
	case len(g.answersFor(m.PlayerID)) > s.CurrentQuestionIndex:
		return fmt.Errorf("%w: player has already answered this question", game.ErrInvalidMove)
	}
	s = s.Copy()
	answerIndex := *m.Move.AnswerIndex
	correct := answerIndex == g.correctAnswers[s.CurrentQuestionIndex]
	switch m.PlayerID {
	case s.Player1:
		s.Player1Answers = append(s.Player1Answers, answerIndex)
		if correct {
			s.Player1Score++
		}
	default:
		s.Player2Answers = append(s.Player2Answers, answerIndex)
		if correct {
			s.Player2Score++
		}
	}
	if bothPlayersAnswered(s) {
		s.CurrentQuestionIndex++
	}
	if s.CurrentQuestionIndex >= len(s.Questions) {
		s.Status = game.Over
		s.Winners = winners(s)
	}
	g.state = s
	return nil
}

// Model implements game.Game.  Correct answers are never included.
func (g *Game) Model() game.Instance {
	i := game.Instance{
		GameID:    g.id,
		GameType:  game.TypeTrivia,
		Players:   g.players,
		State:     g.state,
		CreatedBy: g.createdBy,
	}
	return i.Copy()
}

// Snapshot implements game.Game.  The snapshot carries the correct answers so
// a rehydrated game can keep scoring moves.
func (g *Game) Snapshot() game.Snapshot {
	correctAnswers := make([]int, len(g.correctAnswers))
	copy(correctAnswers, g.correctAnswers)
	return game.Snapshot{
		Instance:       g.Model(),
		CorrectAnswers: correctAnswers,
	}
}

func (g *Game) hasPlayer(playerID game.PlayerID) bool {
	for _, p := range g.players {
		if p == playerID {
			return true
		}
	}
	return false
}

func (g *Game) answersFor(playerID game.PlayerID) []int {
	if playerID == g.state.Player1 {
		return g.state.Player1Answers
	}
	return g.state.Player2Answers
}

// bothPlayersAnswered reports whether the current question has an answer from
// each slot.  A vacated slot never answers, so its presence is not required.
func bothPlayersAnswered(s game.State) bool {
	return len(s.Player1Answers) > s.CurrentQuestionIndex &&
		len(s.Player2Answers) > s.CurrentQuestionIndex
}

// winners determines who won a finished game.  A vacated slot concedes; equal
// scores make both players winners.
func winners(s game.State) []game.PlayerID {
	switch {
	case s.Player1 == "" && s.Player2 == "":
		return nil
	case s.Player1 == "":
		return []game.PlayerID{s.Player2}
	case s.Player2 == "":
		return []game.PlayerID{s.Player1}
	case s.Player1Score > s.Player2Score:
		return []game.PlayerID{s.Player1}
	case s.Player2Score > s.Player1Score:
		return []game.PlayerID{s.Player2}
	default:
		return []game.PlayerID{s.Player1, s.Player2}
	}
}

func removePlayer(players []game.PlayerID, playerID game.PlayerID) []game.PlayerID {
	remaining := make([]game.PlayerID, 0, len(players))
	for _, p := range players {
		if p != playerID {
			remaining = append(remaining, p)
		}
	}
	return remaining
}
