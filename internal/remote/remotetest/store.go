// Package remotetest provides an in-memory remote.Store for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"relief-portal-go/internal/remote"
)

type Store struct {
	mu          sync.Mutex
	tables      map[string][]map[string]any
	readErrors  map[string]error
	writeErrors map[string]error
	queries     []remote.Query
}

func NewStore() *Store {
	return &Store{
		tables:      make(map[string][]map[string]any),
		readErrors:  make(map[string]error),
		writeErrors: make(map[string]error),
	}
}

func (s *Store) Seed(table string, rows ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], rows...)
}

// FailReads makes every read of table return err.
func (s *Store) FailReads(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErrors[table] = err
}

func (s *Store) FailWrites(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErrors[table] = err
}

// Calls counts reads issued against table.
func (s *Store) Calls(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, q := range s.queries {
		if q.Table == table {
			count++
		}
	}
	return count
}

func (s *Store) Queries() []remote.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]remote.Query(nil), s.queries...)
}

func (s *Store) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.tables[table]...)
}

func (s *Store) Select(ctx context.Context, query remote.Query, dest any) error {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	if err := s.readErrors[query.Table]; err != nil {
		s.mu.Unlock()
		return err
	}

	result := make([]map[string]any, 0)
	for _, row := range s.tables[query.Table] {
		if matches(row, query.Filters) {
			result = append(result, project(row, query.Columns))
		}
	}
	s.mu.Unlock()

	encoded, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}

func (s *Store) Insert(ctx context.Context, table string, row any) error {
	fields, err := toMap(row)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErrors[table]; err != nil {
		return err
	}
	s.tables[table] = append(s.tables[table], fields)
	return nil
}

func (s *Store) Upsert(ctx context.Context, table string, conflictColumn string, row any) error {
	fields, err := toMap(row)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErrors[table]; err != nil {
		return err
	}

	key := valueString(fields[conflictColumn])
	for i, existing := range s.tables[table] {
		if valueString(existing[conflictColumn]) == key {
			s.tables[table][i] = fields
			return nil
		}
	}
	s.tables[table] = append(s.tables[table], fields)
	return nil
}

func matches(row map[string]any, filters []remote.Filter) bool {
	for _, filter := range filters {
		value := valueString(row[filter.Column])
		found := false
		for _, candidate := range filter.Values {
			if candidate == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func project(row map[string]any, columns []string) map[string]any {
	if len(columns) == 0 {
		return row
	}
	projected := make(map[string]any, len(columns))
	for _, column := range columns {
		if column == "*" {
			return row
		}
		if value, ok := row[column]; ok {
			projected[column] = value
		}
	}
	return projected
}

func toMap(row any) (map[string]any, error) {
	encoded, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func valueString(value any) string {
	if id, ok := remote.IDString(value); ok {
		return id
	}
	return fmt.Sprint(value)
}
