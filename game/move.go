package game

type (
	// Move is a player's request to advance a game.
	Move struct {
		// PlayerID is the player making the move.
		PlayerID PlayerID `json:"playerID" bson:"playerID"`
		// GameID is the game the move is for.
		GameID ID `json:"gameID" bson:"gameID"`
		// Move is the variant-specific payload.
		Move MovePayload `json:"move" bson:"move"`
	}

	// MovePayload holds the fields for each variant's moves.  Nim moves set
	// NumObjects; trivia moves set QuestionID and AnswerIndex.
	MovePayload struct {
		// NumObjects is the number of objects to take from the Nim pool.
		NumObjects int `json:"numObjects,omitempty" bson:"numObjects,omitempty"`
		// QuestionID is the id of the trivia question being answered.
		QuestionID string `json:"questionId,omitempty" bson:"questionId,omitempty"`
		// AnswerIndex is the chosen option.  A pointer distinguishes answering
		// option 0 from not answering at all.
		AnswerIndex *int `json:"answerIndex,omitempty" bson:"answerIndex,omitempty"`
	}
)
