package game

import (
	"context"
	"fmt"

	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/nim"
	"github.com/fanout-games/arcade/game/trivia"
)

type mockDao struct {
	SaveFunc func(ctx context.Context, snap game.Snapshot) error
	FindFunc func(ctx context.Context, id game.ID) (*game.Snapshot, error)
	ListFunc func(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error)
}

func (m mockDao) Save(ctx context.Context, snap game.Snapshot) error {
	return m.SaveFunc(ctx, snap)
}

func (m mockDao) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	return m.FindFunc(ctx, id)
}

func (m mockDao) List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error) {
	return m.ListFunc(ctx, f)
}

// fakeDao stores snapshots in memory so tests can exercise persistence and
// rehydration round trips.
type fakeDao struct {
	snaps map[game.ID]game.Snapshot
}

func newFakeDao() *fakeDao {
	return &fakeDao{
		snaps: make(map[game.ID]game.Snapshot),
	}
}

func (d *fakeDao) Save(ctx context.Context, snap game.Snapshot) error {
	d.snaps[snap.GameID] = snap.Copy()
	return nil
}

func (d *fakeDao) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	snap, ok := d.snaps[id]
	if !ok {
		return nil, gamestate.ErrNotFound
	}
	snap = snap.Copy()
	return &snap, nil
}

func (d *fakeDao) List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error) {
	var snaps []game.Snapshot
	for _, snap := range d.snaps {
		if f.Matches(snap) {
			snaps = append(snaps, snap.Copy())
		}
	}
	return snaps, nil
}

// seqSource deals deterministic questions q0, q1, ... whose correct answer is
// the question index modulo 4.
type seqSource struct{}

func (seqSource) RandomQuestions(ctx context.Context, n int) ([]trivia.SecretQuestion, error) {
	questions := make([]trivia.SecretQuestion, n)
	for i := range questions {
		q := trivia.SecretQuestion{
			CorrectAnswer: i % 4,
		}
		q.QuestionID = fmt.Sprintf("q%d", i)
		q.Text = fmt.Sprintf("question %d", i)
		q.Options = []string{"a", "b", "c", "d"}
		questions[i] = q
	}
	return questions, nil
}

func testVariants() map[game.Type]Variant {
	source := seqSource{}
	return map[game.Type]Variant{
		game.TypeNim: {
			New: func(id game.ID, createdBy game.PlayerID) (game.Game, error) {
				return nim.New(id, createdBy), nil
			},
			Load: func(snap game.Snapshot) (game.Game, error) {
				return nim.FromSnapshot(snap)
			},
		},
		game.TypeTrivia: {
			New: func(id game.ID, createdBy game.PlayerID) (game.Game, error) {
				return trivia.New(id, createdBy, source)
			},
			Load: func(snap game.Snapshot) (game.Game, error) {
				return trivia.FromSnapshot(snap, source)
			},
		},
	}
}
