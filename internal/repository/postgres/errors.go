package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// normalizeErr maps driver errors onto the model error taxonomy. A PgError
// means the server answered, so it stays a semantic error; anything else at
// the transport level marks the remote as unavailable, which is what routes
// callers onto the fallback path.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrRemoteUnavailable, err)
}
