package like

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/flake"
	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertLike = `INSERT INTO %s.likes(json_data) VALUES($1)`
	pgUpdateLike = `
		UPDATE
			%s.likes
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseDeleted     = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseIDs         = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseObjectIDs   = `(json_data->>'object_id')::BIGINT IN (?)`
	pgClauseObjectTypes = `(json_data->>'object_type')::TEXT IN (?)`
	pgClauseUserIDs     = `(json_data->>'user_id')::BIGINT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgCountLikes = `SELECT count(json_data) FROM %s.likes
		%s`
	pgListLikes = `SELECT json_data FROM %s.likes
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.likes
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.likes`

	pgIndexObject = `
		CREATE INDEX
			%s
		ON
			%s.likes(((json_data->>'object_id')::BIGINT), (json_data->>'object_type'))
		WHERE
			(json_data->>'deleted')::BOOL = false`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return 0, err
	}

	return s.countLikes(ns, where, params...)
}

func (s *pgService) Put(ns string, l *Like) (*Like, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateLike

		params []interface{}
	)

	if err := l.Validate(); err != nil {
		return nil, err
	}

	if l.ID != 0 {
		params = []interface{}{
			l.ID,
		}

		ls, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				l.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(ls) == 0 {
			return nil, ErrNotFound
		}

		l.CreatedAt = ls[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		l.ID = id

		query = pgInsertLike
	}

	l.UpdatedAt = now

	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	params = append([]interface{}{data}, params...)

	_, err = s.db.Exec(wrapNamespace(query, ns), params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(wrapNamespace(query, ns), params...)
	}

	return l, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listLikes(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "like_object", pgIndexObject),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("query (%s): %s", query, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	_, err := s.db.Exec(wrapNamespace(pgDropTable, ns))
	return err
}

func (s *pgService) countLikes(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountLikes, ns, where)
	)

	err := s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return 0, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) listLikes(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListLikes, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			rows, err = s.db.Query(query, params...)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	defer rows.Close()

	ls := List{}

	for rows.Next() {
		var (
			l = &Like{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, l)
		if err != nil {
			return nil, err
		}

		ls = append(ls, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ls, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if opts.Deleted != nil {
		clauses = append(clauses, pgClauseDeleted)
		params = append(params, *opts.Deleted)
	}

	if len(opts.IDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.IDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ObjectIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ObjectIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseObjectIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ObjectTypes) > 0 {
		ps := []interface{}{}

		for _, t := range opts.ObjectTypes {
			ps = append(ps, t)
		}

		clause, _, err := sqlx.In(pgClauseObjectTypes, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.UserIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.UserIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseUserIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	query := ""

	if len(clauses) > 0 {
		query = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	query = fmt.Sprintf("%s\n%s", query, pgOrderUpdatedAt)

	if opts.Limit > 0 {
		query = fmt.Sprintf("%s\nLIMIT %d", query, opts.Limit)
	}

	return query, params, nil
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
