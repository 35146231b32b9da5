package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/session"
)

type sessionRow struct {
	Flow sql.NullString `db:"flow"`
	Step sql.NullInt64  `db:"step"`
	Data sql.NullString `db:"data"`
}

// SessionState loads the user's conversation state. A missing row or a null
// flow column both decode to the "no active flow" state.
func (s *SQLStore) SessionState(ctx context.Context, userID int64) (session.State, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT flow, step, data FROM session_states WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return session.None(), nil
	}
	if err != nil {
		return session.None(), errors.Wrap(err, "store.SessionState")
	}
	if !row.Flow.Valid || row.Flow.String == "" {
		return session.None(), nil
	}

	draft, err := session.DecodeDraft(row.Data.String)
	if err != nil {
		return session.None(), errors.Wrap(err, "store.SessionState")
	}
	return session.State{
		Flow:  session.Flow(row.Flow.String),
		Step:  int(row.Step.Int64),
		Draft: draft,
	}, nil
}

// SaveSessionState upserts the user's conversation state.
func (s *SQLStore) SaveSessionState(ctx context.Context, userID int64, st session.State) error {
	if !st.Active() {
		return s.ClearSessionState(ctx, userID)
	}

	data, err := session.EncodeDraft(st.Draft)
	if err != nil {
		return errors.Wrap(err, "store.SaveSessionState")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_states (user_id, flow, step, data, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET flow = EXCLUDED.flow, step = EXCLUDED.step, data = EXCLUDED.data, updated_at = now()`,
		userID, string(st.Flow), st.Step, data)
	return errors.Wrap(err, "store.SaveSessionState")
}

// ClearSessionState returns the user to the "no active flow" state.
func (s *SQLStore) ClearSessionState(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_states (user_id, flow, step, data, updated_at)
		 VALUES ($1, NULL, NULL, NULL, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET flow = NULL, step = NULL, data = NULL, updated_at = now()`,
		userID)
	return errors.Wrap(err, "store.ClearSessionState")
}
