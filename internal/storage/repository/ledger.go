package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// InsertLedgerTransaction сохраняет запись леджера, принятую из очереди.
// Повторная доставка того же сообщения игнорируется по первичному ключу.
func (s *Storage) InsertLedgerTransaction(ctx context.Context, tx models.LedgerTransaction) error {
	const op = "storage.InsertLedgerTransaction"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO ledger_transactions (id, user_uid, type, subtype, amount,
			      currency, day, rate, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (id) DO NOTHING`
	_, err := s.DB.ExecContext(ctx, query,
		tx.ID, tx.UserUID, tx.Type, tx.Subtype, tx.Amount,
		tx.Currency, tx.Day, tx.Rate, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLedgerTransactions возвращает записи леджера пользователя с пагинацией.
func (s *Storage) ListLedgerTransactions(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerTransaction, error) {
	const op = "storage.ListLedgerTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, type, subtype, amount, currency, day, rate, created_at
			  FROM ledger_transactions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.LedgerTransaction
	for rows.Next() {
		var tx models.LedgerTransaction
		if err := rows.Scan(&tx.ID, &tx.UserUID, &tx.Type, &tx.Subtype, &tx.Amount,
			&tx.Currency, &tx.Day, &tx.Rate, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
