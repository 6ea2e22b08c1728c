package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/flake"
	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertActivity = `INSERT INTO %s.activities(json_data) VALUES($1)`
	pgUpdateActivity = `
		UPDATE
			%s.activities
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseBefore    = `json_data->>'updated_at' < ?`
	pgClauseDeleted   = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseEndsAfter = `(json_data->>'starts_at')::BIGINT + (json_data->>'duration')::BIGINT >= ?`
	pgClauseIDs       = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseOwnerIDs  = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseParentIDs = `(json_data->>'parent_id')::BIGINT IN (?)`
	pgClausePrivacies = `(json_data->>'privacy')::INT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgCountActivities = `SELECT count(json_data) FROM %s.activities
		%s`
	pgListActivities = `SELECT json_data FROM %s.activities
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.activities
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.activities`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.activities(((json_data->>'id')::BIGINT))
		WHERE
			(json_data->>'deleted')::BOOL = false`
	pgIndexOwner = `
		CREATE INDEX
			%s
		ON
			%s.activities(((json_data->>'owner_id')::BIGINT))
		WHERE
			(json_data->>'deleted')::BOOL = false`
	pgIndexPrivacy = `
		CREATE INDEX
			%s
		ON
			%s.activities(((json_data->>'privacy')::INT), (json_data->>'updated_at'))
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

	return s.countActivities(ns, where, params...)
}

func (s *pgService) Put(ns string, a *Activity) (*Activity, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateActivity

		params []interface{}
	)

	if err := a.Validate(); err != nil {
		return nil, err
	}

	if a.ID != 0 {
		params = []interface{}{
			a.ID,
		}

		as, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				a.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(as) == 0 {
			return nil, ErrNotFound
		}

		a.CreatedAt = as[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.ID = id

		query = pgInsertActivity
	}

	a.UpdatedAt = now

	data, err := json.Marshal(a)
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

	return a, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listActivities(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "activity_id", pgIndexID),
		pg.GuardIndex(ns, "activity_owner", pgIndexOwner),
		pg.GuardIndex(ns, "activity_privacy", pgIndexPrivacy),
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

func (s *pgService) countActivities(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountActivities, ns, where)
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

func (s *pgService) listActivities(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListActivities, ns, where)

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

	as := List{}

	for rows.Next() {
		var (
			a = &Activity{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, a)
		if err != nil {
			return nil, err
		}

		as = append(as, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return as, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
	}

	if opts.Deleted != nil {
		clauses = append(clauses, pgClauseDeleted)
		params = append(params, *opts.Deleted)
	}

	if opts.EndsAfter > 0 {
		clauses = append(clauses, pgClauseEndsAfter)
		params = append(params, opts.EndsAfter)
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

	if len(opts.OwnerIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.OwnerIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseOwnerIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.ParentIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ParentIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseParentIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Privacies) > 0 {
		ps := []interface{}{}

		for _, p := range opts.Privacies {
			ps = append(ps, int(p))
		}

		clause, _, err := sqlx.In(pgClausePrivacies, ps)
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

	if opts.Offset > 0 {
		query = fmt.Sprintf("%s\nOFFSET %d", query, opts.Offset)
	}

	return query, params, nil
}

func wrapNamespace(query, namespace string) string {
	return fmt.Sprintf(query, namespace)
}
