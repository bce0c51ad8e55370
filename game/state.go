package game

type (
	// State is the variant-specific progress of a game.  Status and Winners are
	// common to all variants; the other fields belong to one variant and are
	// omitted from documents and messages for the others.
	State struct {
		// Status is the lifecycle state of the game.
		Status Status `json:"status" bson:"status"`
		// Winners is set when the game is over.  Both players are present on a tie.
		Winners []PlayerID `json:"winners,omitempty" bson:"winners,omitempty"`
		// Player1 is the player in the first slot, empty if vacated.
		Player1 PlayerID `json:"player1,omitempty" bson:"player1,omitempty"`
		// Player2 is the player in the second slot, empty if vacated.
		Player2 PlayerID `json:"player2,omitempty" bson:"player2,omitempty"`

		// Moves is the log of takes in a Nim game, oldest first.
		Moves []NimMove `json:"moves,omitempty" bson:"moves,omitempty"`
		// RemainingObjects is the number of objects left in the Nim pool.
		RemainingObjects int `json:"remainingObjects,omitempty" bson:"remainingObjects,omitempty"`

		// CurrentQuestionIndex is the index of the trivia question both players are on.
		CurrentQuestionIndex int `json:"currentQuestionIndex,omitempty" bson:"currentQuestionIndex,omitempty"`
		// Questions is the fixed list of trivia questions for the game, without answers.
		Questions []Question `json:"questions,omitempty" bson:"questions,omitempty"`
		// Player1Answers is the first player's chosen option per answered question.
		Player1Answers []int `json:"player1Answers,omitempty" bson:"player1Answers,omitempty"`
		// Player2Answers is the second player's chosen option per answered question.
		Player2Answers []int `json:"player2Answers,omitempty" bson:"player2Answers,omitempty"`
		// Player1Score is the first player's correct answer count.
		Player1Score int `json:"player1Score,omitempty" bson:"player1Score,omitempty"`
		// Player2Score is the second player's correct answer count.
		Player2Score int `json:"player2Score,omitempty" bson:"player2Score,omitempty"`
	}

	// NimMove is a take of objects from the Nim pool.
	NimMove struct {
		Player     PlayerID `json:"player" bson:"player"`
		NumObjects int      `json:"numObjects" bson:"numObjects"`
	}

	// Question is a four-option trivia question as players see it.
	// The correct option is tracked separately so it never reaches players.
	Question struct {
		QuestionID string   `json:"questionId" bson:"questionId"`
		Text       string   `json:"question" bson:"question"`
		Options    []string `json:"options" bson:"options"`
	}

	// Instance is the projection of a game that players may see.
	Instance struct {
		GameID    ID         `json:"gameID" bson:"gameID"`
		GameType  Type       `json:"gameType" bson:"gameType"`
		Players   []PlayerID `json:"players" bson:"players"`
		State     State      `json:"state" bson:"state"`
		CreatedBy PlayerID   `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	}

	// Snapshot is the projection of a game that is persisted.  It carries the
	// public Instance plus server-only fields so a game reloaded from the store
	// plays on exactly as before.
	Snapshot struct {
		Instance `bson:",inline"`
		// CorrectAnswers is the correct option index per trivia question.
		CorrectAnswers []int `json:"correctAnswers,omitempty" bson:"correctAnswers,omitempty"`
	}
)

// Copy returns a state that shares no slices with the receiver.
func (s State) Copy() State {
	s2 := s
	s2.Winners = copySlice(s.Winners)
	s2.Moves = copySlice(s.Moves)
	s2.Questions = copySlice(s.Questions)
	s2.Player1Answers = copySlice(s.Player1Answers)
	s2.Player2Answers = copySlice(s.Player2Answers)
	return s2
}

// Copy returns an instance that shares no slices with the receiver.
func (i Instance) Copy() Instance {
	i2 := i
	i2.Players = copySlice(i.Players)
	i2.State = i.State.Copy()
	return i2
}

// Copy returns a snapshot that shares no slices with the receiver.
func (s Snapshot) Copy() Snapshot {
	s2 := s
	s2.Instance = s.Instance.Copy()
	s2.CorrectAnswers = copySlice(s.CorrectAnswers)
	return s2
}

func copySlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}
