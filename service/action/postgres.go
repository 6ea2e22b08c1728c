package action

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/flake"
	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertAction = `INSERT INTO %s.actions(json_data) VALUES($1)`

	pgClauseActorIDs    = `(json_data->>'actor_id')::BIGINT IN (?)`
	pgClauseBefore      = `json_data->>'updated_at' < ?`
	pgClauseIDs         = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseObjectIDs   = `(json_data->>'object_id')::BIGINT IN (?)`
	pgClauseObjectTypes = `(json_data->>'object_type')::TEXT IN (?)`
	pgClauseVerbs       = `(json_data->>'verb')::TEXT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgCountActions = `SELECT count(json_data) FROM %s.actions
		%s`
	pgListActions = `SELECT json_data FROM %s.actions
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.actions
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.actions`

	pgIndexActor = `
		CREATE INDEX
			%s
		ON
			%s.actions(((json_data->>'actor_id')::BIGINT), (json_data->>'verb'))`
	pgIndexObject = `
		CREATE INDEX
			%s
		ON
			%s.actions(((json_data->>'object_id')::BIGINT), (json_data->>'verb'))`
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

	return s.countActions(ns, where, params...)
}

func (s *pgService) Put(ns string, a *Action) (*Action, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	id, err := flake.NextID(flakeNamespace(ns))
	if err != nil {
		return nil, err
	}

	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	a.CreatedAt = a.CreatedAt.UTC()
	a.ID = id

	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	a.UpdatedAt = a.UpdatedAt.UTC()

	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}

	query := wrapNamespace(pgInsertAction, ns)

	_, err = s.db.Exec(query, data)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, data)
	}

	return a, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listActions(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "action_actor", pgIndexActor),
		pg.GuardIndex(ns, "action_object", pgIndexObject),
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

func (s *pgService) countActions(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountActions, ns, where)
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

func (s *pgService) listActions(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListActions, ns, where)

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
			a = &Action{}

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

	if len(opts.ActorIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.ActorIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseActorIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC().Format(time.RFC3339Nano))
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

	if len(opts.Verbs) > 0 {
		ps := []interface{}{}

		for _, v := range opts.Verbs {
			ps = append(ps, v)
		}

		clause, _, err := sqlx.In(pgClauseVerbs, ps)
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
