package store

import (
	"context"
	"iter"
	"strings"

	"github.com/stockroomapp/stockroom-server/internal/domain"
	"github.com/stockroomapp/stockroom-server/internal/errors"
	"github.com/stockroomapp/stockroom-server/internal/id"
)

// CreateBoard persists a new board workspace.
func (s *Store) CreateBoard(ctx context.Context, board *domain.Board) (*domain.Board, error) {
	if strings.TrimSpace(board.Name) == "" {
		return nil, errors.Validation("board name is required")
	}

	board.ID = id.MustGenerate("brd")
	board.InitTimestamps()

	if err := s.Boards.Create(ctx, board.ID, board); err != nil {
		return nil, storageErr(err, "create board")
	}
	return board, nil
}

// GetBoard retrieves a board by id.
func (s *Store) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	board, err := s.Boards.Get(ctx, boardID)
	if errors.Is(err, ErrNotFound) {
		return nil, errors.NotFoundf("board %s not found", boardID)
	}
	if err != nil {
		return nil, storageErr(err, "get board")
	}
	return board, nil
}

// ListBoards returns all boards.
func (s *Store) ListBoards(ctx context.Context) iter.Seq2[*domain.Board, error] {
	return s.Boards.List(ctx)
}

// mutateBoard loads a board, applies fn, and persists the result when
// fn reports a change. All vocabulary operations funnel through here.
func (s *Store) mutateBoard(ctx context.Context, boardID string, fn func(*domain.Board) bool) error {
	board, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}

	if !fn(board) {
		// No-op mutation (idempotent add, remove of absent entry).
		return nil
	}

	board.Touch()
	if err := s.Boards.Update(ctx, boardID, board); err != nil {
		return storageErr(err, "update board")
	}
	return nil
}

// AddCategory adds a category to the board's vocabulary. Idempotent.
func (s *Store) AddCategory(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.AddCategory(entry) })
}

// RemoveCategory removes a category from the board's vocabulary.
// No-op if the entry is absent.
func (s *Store) RemoveCategory(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.RemoveCategory(entry) })
}

// AddLabel adds a label to the board's vocabulary. Idempotent.
func (s *Store) AddLabel(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.AddLabel(entry) })
}

// RemoveLabel removes a label from the board's vocabulary.
// No-op if the entry is absent.
func (s *Store) RemoveLabel(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.RemoveLabel(entry) })
}

// AddPayee adds a paid-to option to the board's vocabulary. Idempotent.
func (s *Store) AddPayee(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.AddPayee(entry) })
}

// RemovePayee removes a paid-to option from the board's vocabulary.
// No-op if the entry is absent.
func (s *Store) RemovePayee(ctx context.Context, boardID, entry string) error {
	return s.mutateBoard(ctx, boardID, func(b *domain.Board) bool { return b.RemovePayee(entry) })
}
