package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"postforlife/internal/reaction"
)

// reactionTarget names the tables behind a reactable entity. Values are
// fixed at compile time and never come from a request.
type reactionTarget struct {
	entity        string
	table         string
	idColumn      string
	reactionTable string
}

var (
	postTarget = reactionTarget{
		entity:        "post",
		table:         "posts",
		idColumn:      "post_id",
		reactionTable: "post_reactions",
	}
	commentTarget = reactionTarget{
		entity:        "comment",
		table:         "comments",
		idColumn:      "comment_id",
		reactionTable: "comment_reactions",
	}
)

// applyReaction toggles a reaction and stores the recomputed counts in one
// transaction. The target row is locked first, so concurrent reactions on the
// same target are serialized instead of overwriting each other.
func applyReaction(ctx context.Context, db *sqlx.DB, target reactionTarget, targetID, userID string, t reaction.Type) (reaction.Result, error) {
	var result reaction.Result

	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		var locked string
		err := tx.GetContext(ctx, &locked,
			fmt.Sprintf(`SELECT %[1]s FROM %[2]s WHERE %[1]s = $1 FOR UPDATE`, target.idColumn, target.table),
			targetID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s %s", ErrNotFound, target.entity, targetID)
			}
			return fmt.Errorf("failed to lock %s: %w", target.entity, err)
		}

		current, err := listReactions(ctx, tx, target, targetID)
		if err != nil {
			return err
		}

		result = reaction.Apply(current, userID, t)

		switch result.Change {
		case reaction.Added:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (%s, user_id, type) VALUES ($1, $2, $3)`, target.reactionTable, target.idColumn),
				targetID, userID, string(t))
		case reaction.Changed:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET type = $1 WHERE %s = $2 AND user_id = $3`, target.reactionTable, target.idColumn),
				string(t), targetID, userID)
		case reaction.Removed:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND user_id = $2`, target.reactionTable, target.idColumn),
				targetID, userID)
		}
		if err != nil {
			return fmt.Errorf("failed to save %s reaction: %w", target.entity, err)
		}

		_, err = tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET likes = $1, dislikes = $2, loves = $3 WHERE %s = $4`, target.table, target.idColumn),
			result.Counts.Likes, result.Counts.Dislikes, result.Counts.Loves, targetID)
		if err != nil {
			return fmt.Errorf("failed to update %s reaction counts: %w", target.entity, err)
		}

		return nil
	})

	return result, err
}

func listReactions(ctx context.Context, q sqlx.QueryerContext, target reactionTarget, targetID string) ([]reaction.Reaction, error) {
	reactions := []reaction.Reaction{}

	err := sqlx.SelectContext(ctx, q, &reactions,
		fmt.Sprintf(`SELECT user_id, type FROM %s WHERE %s = $1 ORDER BY created_at, user_id`, target.reactionTable, target.idColumn),
		targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s reactions: %w", target.entity, err)
	}

	return reactions, nil
}

type ownedReaction struct {
	OwnerID string `db:"owner_id"`
	reaction.Reaction
}

// reactionsByTarget loads the reactions of many targets in one query.
func reactionsByTarget(ctx context.Context, q sqlx.QueryerContext, target reactionTarget, ids []string) (map[string][]reaction.Reaction, error) {
	grouped := make(map[string][]reaction.Reaction, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}

	var rows []ownedReaction
	err := sqlx.SelectContext(ctx, q, &rows,
		fmt.Sprintf(`SELECT %[1]s AS owner_id, user_id, type FROM %[2]s WHERE %[1]s = ANY($1) ORDER BY created_at, user_id`,
			target.idColumn, target.reactionTable),
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s reactions: %w", target.entity, err)
	}

	for _, row := range rows {
		grouped[row.OwnerID] = append(grouped[row.OwnerID], row.Reaction)
	}

	return grouped, nil
}
