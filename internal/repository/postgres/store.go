// Package postgres serves remote.Store straight from a PostgreSQL database
// with the same tables the hosted data service exposes.
package postgres

import (
	"context"
	"errors"

	"relief-portal-go/internal/remote"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Select(ctx context.Context, query remote.Query, dest any) error {
	tx := s.db.WithContext(ctx).Table(query.Table)
	if len(query.Columns) > 0 {
		tx = tx.Select(query.Columns)
	}

	for _, filter := range query.Filters {
		column := clause.Column{Name: filter.Column}
		switch filter.Op {
		case remote.OpIn:
			values := make([]interface{}, 0, len(filter.Values))
			for _, value := range filter.Values {
				values = append(values, value)
			}
			tx = tx.Where(clause.IN{Column: column, Values: values})
		default:
			var value interface{}
			if len(filter.Values) > 0 {
				value = filter.Values[0]
			}
			tx = tx.Where(clause.Eq{Column: column, Value: value})
		}
	}

	for _, order := range query.Orders {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Descending})
	}

	if err := tx.Find(dest).Error; err != nil {
		status, code, message := describe(err)
		return &remote.ReadError{Table: query.Table, Status: status, Code: code, Message: message, Err: err}
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, table string, row any) error {
	if err := s.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		status, code, message := describe(err)
		return &remote.WriteError{Table: table, Status: status, Code: code, Message: message, Err: err}
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, table string, conflictColumn string, row any) error {
	err := s.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: conflictColumn}},
			UpdateAll: true,
		}).
		Create(row).Error
	if err != nil {
		status, code, message := describe(err)
		return &remote.WriteError{Table: table, Status: status, Code: code, Message: message, Err: err}
	}
	return nil
}

// describe maps database errors onto the status codes the hosted service
// would have answered with.
func describe(err error) (int, string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return statusFor(pgErr.Code), pgErr.Code, pgErr.Message
	}
	return 0, "", err.Error()
}

func statusFor(code string) int {
	switch {
	case code == "23505":
		return 409
	case code == "42501":
		return 403
	case code == "42P01":
		return 404
	case len(code) == 5 && (code[:2] == "22" || code[:2] == "23"):
		return 400
	default:
		return 500
	}
}
