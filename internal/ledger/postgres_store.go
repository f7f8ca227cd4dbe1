package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/studyhall/server/internal/quota"
)

const (
	queryFindUsage = `
		SELECT user_id, to_char(day, 'YYYY-MM-DD'), qna_count, flashcard_count, quiz_count, updated_at
		FROM usage_records
		WHERE user_id = $1 AND day = $2::date
	`

	queryListUsageSince = `
		SELECT user_id, to_char(day, 'YYYY-MM-DD'), qna_count, flashcard_count, quiz_count, updated_at
		FROM usage_records
		WHERE user_id = $1 AND day >= $2::date
		ORDER BY day ASC
	`

	queryDeleteUsageBefore = `
		DELETE FROM usage_records
		WHERE day < $1::date
	`

	// %[1]s is the counter column, chosen from a fixed set by counterField.
	// the WHERE on the conflict branch makes check and increment one statement;
	// no returned row means the counter is already at the limit
	queryConsumeIfBelow = `
		INSERT INTO usage_records (user_id, day, %[1]s, updated_at)
		VALUES ($1, $2::date, 1, NOW())
		ON CONFLICT (user_id, day) DO UPDATE SET
			%[1]s = usage_records.%[1]s + 1,
			updated_at = NOW()
		WHERE $3::bigint < 0 OR usage_records.%[1]s < $3::bigint
		RETURNING %[1]s
	`

	queryCurrentCount = `
		SELECT %s
		FROM usage_records
		WHERE user_id = $1 AND day = $2::date
	`
)

// PostgresStore keeps usage in the usage_records table. Atomicity comes from
// the conditional upsert, so it is safe across server replicas.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, userID string, day Day) (*UsageRecord, error) {
	record, err := scanUsage(s.db.QueryRow(ctx, queryFindUsage, userID, string(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("find usage record: %w", err)
	}

	return &record, nil
}

func (s *PostgresStore) ConsumeIfBelow(ctx context.Context, userID string, day Day, capability quota.Capability, limit int64) (int64, bool, error) {
	column, err := counterField(capability)
	if err != nil {
		return 0, false, err
	}

	// the insert branch has no predicate
	if limit == 0 {
		return 0, false, nil
	}

	var count int64

	err = s.db.QueryRow(ctx, fmt.Sprintf(queryConsumeIfBelow, column), userID, string(day), limit).Scan(&count)
	if err == nil {
		return count, true, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("consume %s: %w", capability, err)
	}

	// denied; read the value for the caller's decision
	err = s.db.QueryRow(ctx, fmt.Sprintf(queryCurrentCount, column), userID, string(day)).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return limit, false, nil
		}

		return 0, false, fmt.Errorf("read %s after denial: %w", capability, err)
	}

	return count, false, nil
}

func (s *PostgresStore) ListSince(ctx context.Context, userID string, since Day) ([]UsageRecord, error) {
	rows, err := s.db.Query(ctx, queryListUsageSince, userID, string(since))
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer rows.Close()

	records := []UsageRecord{}
	for rows.Next() {
		record, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage records: %w", err)
	}

	return records, nil
}

func (s *PostgresStore) DeleteBefore(ctx context.Context, day Day) (int64, error) {
	tag, err := s.db.Exec(ctx, queryDeleteUsageBefore, string(day))
	if err != nil {
		return 0, fmt.Errorf("delete usage records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanUsage(row pgx.Row) (UsageRecord, error) {
	var (
		record UsageRecord
		day    string
	)

	err := row.Scan(
		&record.UserID,
		&day,
		&record.QnACount,
		&record.FlashcardCount,
		&record.QuizCount,
		&record.UpdatedAt,
	)
	if err != nil {
		return UsageRecord{}, err
	}

	record.Day = Day(day)

	return record, nil
}
