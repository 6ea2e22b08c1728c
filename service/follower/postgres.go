package follower

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/pg"
)

const (
	orderNone ordering = iota
	orderUpdatedAt
)

const (
	pgInsertFollow = `INSERT INTO %s.followers(json_data) VALUES($1)`
	pgUpdateFollow = `UPDATE %s.followers
		SET json_data = $3
		WHERE (json_data->>'user_id')::BIGINT = $1::BIGINT
		AND (json_data->>'follower_id')::BIGINT = $2::BIGINT`

	pgCountFollows = `SELECT count(json_data) FROM %s.followers
		%s`
	pgListFollows = `SELECT json_data FROM %s.followers
		%s`

	pgClauseAfter       = `json_data->>'updated_at' > ?`
	pgClauseBefore      = `json_data->>'updated_at' < ?`
	pgClauseEnabled     = `(json_data->>'enabled')::BOOL = ?::BOOL`
	pgClauseFollowerIDs = `(json_data->>'follower_id')::BIGINT IN (?)`
	pgClauseStatuses    = `(json_data->>'status')::INT IN (?)`
	pgClauseUserIDs     = `(json_data->>'user_id')::BIGINT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgIndexAccepted = `
		CREATE INDEX
			%s
		ON
			%s.followers(((json_data->>'user_id')::BIGINT))
		WHERE
			(json_data->>'enabled')::BOOL = true
			AND (json_data->>'status')::INT = 1`
	pgIndexEdge = `
		CREATE INDEX
			%s
		ON
			%s.followers(((json_data->>'user_id')::BIGINT), ((json_data->>'follower_id')::BIGINT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.followers
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.followers`
)

type ordering int

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts, orderNone)
	if err != nil {
		return 0, err
	}

	return s.countFollows(ns, where, params...)
}

func (s *pgService) Put(ns string, f *Follow) (*Follow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var (
		now    = time.Now().UTC()
		params = []interface{}{f.UserID, f.FollowerID}

		query string
	)

	fs, err := s.Query(ns, QueryOptions{
		FollowerIDs: []uint64{
			f.FollowerID,
		},
		UserIDs: []uint64{
			f.UserID,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(fs) > 0 {
		query = wrapNamespace(pgUpdateFollow, ns)

		f.CreatedAt = fs[0].CreatedAt
		f.UpdatedAt = now
	} else {
		params = []interface{}{}
		query = wrapNamespace(pgInsertFollow, ns)

		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}

		if f.UpdatedAt.IsZero() {
			f.UpdatedAt = now
		}

		f.CreatedAt = f.CreatedAt.UTC()
		f.UpdatedAt = f.UpdatedAt.UTC()
	}

	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(query, append(params, data)...)
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, orderUpdatedAt)
	if err != nil {
		return nil, err
	}

	return s.listFollows(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "follower_accepted", pgIndexAccepted),
		pg.GuardIndex(ns, "follower_edge", pgIndexEdge),
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

func (s *pgService) countFollows(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountFollows, ns, where)
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

func (s *pgService) listFollows(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListFollows, ns, where)

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

	fs := List{}

	for rows.Next() {
		var (
			f = &Follow{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, f)
		if err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fs, nil
}

func convertOpts(opts QueryOptions, order ordering) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.After.IsZero() {
		clauses = append(clauses, pgClauseAfter)
		params = append(params, opts.After.UTC().Format(time.RFC3339Nano))
	}

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
	}

	if opts.Enabled != nil {
		clauses = append(clauses, pgClauseEnabled)
		params = append(params, *opts.Enabled)
	}

	if len(opts.FollowerIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.FollowerIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseFollowerIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Statuses) > 0 {
		ps := []interface{}{}

		for _, status := range opts.Statuses {
			ps = append(ps, int(status))
		}

		clause, _, err := sqlx.In(pgClauseStatuses, ps)
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

	if order == orderUpdatedAt {
		query = fmt.Sprintf("%s\n%s", query, pgOrderUpdatedAt)
	}

	if opts.Limit > 0 {
		query = fmt.Sprintf("%s\nLIMIT %d", query, opts.Limit)
	}

	return query, params, nil
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
