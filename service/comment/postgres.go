package comment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/flake"
	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertComment = `INSERT INTO %s.comments(json_data) VALUES($1)`
	pgUpdateComment = `
		UPDATE
			%s.comments
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseActivityIDs   = `(json_data->>'activity_id')::BIGINT IN (?)`
	pgClauseDeleted       = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseIDs           = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseOwnerIDs      = `(json_data->>'owner_id')::BIGINT IN (?)`
	pgClauseParentIDs     = `(json_data->>'parent_id')::BIGINT IN (?)`
	pgClauseRootsOnly     = `(json_data->>'parent_id')::BIGINT = 0`
	pgClauseWithPhotos    = `jsonb_array_length(COALESCE(json_data->'photos', '[]'::JSONB)) > 0`
	pgClauseWithoutPhotos = `jsonb_array_length(COALESCE(json_data->'photos', '[]'::JSONB)) = 0`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgCountComments = `SELECT count(json_data) FROM %s.comments
		%s`
	pgListComments = `SELECT json_data FROM %s.comments
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.comments
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.comments`

	pgIndexActivity = `
		CREATE INDEX
			%s
		ON
			%s.comments(((json_data->>'activity_id')::BIGINT))
		WHERE
			(json_data->>'deleted')::BOOL = false`
	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.comments(((json_data->>'id')::BIGINT))
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

	return s.countComments(ns, where, params...)
}

func (s *pgService) Put(ns string, c *Comment) (*Comment, error) {
	var (
		now   = time.Now().UTC()
		query = pgUpdateComment

		params []interface{}
	)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.ID != 0 {
		params = []interface{}{
			c.ID,
		}

		cs, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				c.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(cs) == 0 {
			return nil, ErrNotFound
		}

		c.CreatedAt = cs[0].CreatedAt
	} else {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.ID = id

		query = pgInsertComment
	}

	c.UpdatedAt = now

	data, err := json.Marshal(c)
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

	return c, err
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listComments(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "comment_activity", pgIndexActivity),
		pg.GuardIndex(ns, "comment_id", pgIndexID),
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

func (s *pgService) countComments(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountComments, ns, where)
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

func (s *pgService) listComments(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListComments, ns, where)

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

	cs := List{}

	for rows.Next() {
		var (
			c = &Comment{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, c)
		if err != nil {
			return nil, err
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cs, nil
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

	if opts.RootsOnly {
		clauses = append(clauses, pgClauseRootsOnly)
	}

	if opts.WithPhotos != nil {
		if *opts.WithPhotos {
			clauses = append(clauses, pgClauseWithPhotos)
		} else {
			clauses = append(clauses, pgClauseWithoutPhotos)
		}
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
