package rsvp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/flake"
	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertRsvp = `INSERT INTO %s.rsvps(json_data) VALUES($1)`
	pgUpdateRsvp = `
		UPDATE
			%s.rsvps
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseActivityIDs = `(json_data->>'activity_id')::BIGINT IN (?)`
	pgClauseDeleted     = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseIDs         = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseUserIDs     = `(json_data->>'user_id')::BIGINT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgCountRsvps = `SELECT count(json_data) FROM %s.rsvps
		%s`
	pgListRsvps = `SELECT json_data FROM %s.rsvps
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.rsvps
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.rsvps`

	pgIndexActivity = `
		CREATE INDEX
			%s
		ON
			%s.rsvps(((json_data->>'activity_id')::BIGINT))
		WHERE
			(json_data->>'deleted')::BOOL = false`
	pgIndexParticipant = `
		CREATE INDEX
			%s
		ON
			%s.rsvps(((json_data->>'activity_id')::BIGINT), ((json_data->>'user_id')::BIGINT))`
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

	return s.countRsvps(ns, where, params...)
}

func (s *pgService) Put(ns string, r *Rsvp) (*Rsvp, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateRsvp

		params []interface{}
	)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	if r.ID != 0 {
		params = []interface{}{
			r.ID,
		}

		rs, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				r.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(rs) == 0 {
			return nil, ErrNotFound
		}

		r.CreatedAt = rs[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.ID = id

		query = pgInsertRsvp
	}

	r.UpdatedAt = now

	data, err := json.Marshal(r)
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

	return r, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listRsvps(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "rsvp_activity", pgIndexActivity),
		pg.GuardIndex(ns, "rsvp_participant", pgIndexParticipant),
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

func (s *pgService) countRsvps(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountRsvps, ns, where)
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

func (s *pgService) listRsvps(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListRsvps, ns, where)

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

	rs := List{}

	for rows.Next() {
		var (
			r = &Rsvp{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, r)
		if err != nil {
			return nil, err
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.ActivityIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ActivityIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseActivityIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

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
