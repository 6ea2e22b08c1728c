package block

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/letsgo/activities/platform/pg"
)

const (
	pgInsertBlock = `INSERT INTO %s.blocks(json_data) VALUES($1)`
	pgUpdateBlock = `UPDATE %s.blocks
		SET json_data = $3
		WHERE (json_data->>'user_id')::BIGINT = $1::BIGINT
		AND (json_data->>'blocked_id')::BIGINT = $2::BIGINT`

	pgCountBlocks = `SELECT count(json_data) FROM %s.blocks
		%s`
	pgListBlocks = `SELECT json_data FROM %s.blocks
		%s`

	pgClauseBlockedIDs = `(json_data->>'blocked_id')::BIGINT IN (?)`
	pgClauseEnabled    = `(json_data->>'enabled')::BOOL = ?::BOOL`
	pgClauseUserIDs    = `(json_data->>'user_id')::BIGINT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgIndexEdge = `
		CREATE INDEX
			%s
		ON
			%s.blocks(((json_data->>'user_id')::BIGINT), ((json_data->>'blocked_id')::BIGINT))`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.blocks
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.blocks`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	where, params, err := convertOpts(opts, false)
	if err != nil {
		return 0, err
	}

	return s.countBlocks(ns, where, params...)
}

func (s *pgService) Put(ns string, b *Block) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	var (
		now    = time.Now().UTC()
		params = []interface{}{b.UserID, b.BlockedID}

		query string
	)

	bs, err := s.Query(ns, QueryOptions{
		BlockedIDs: []uint64{
			b.BlockedID,
		},
		UserIDs: []uint64{
			b.UserID,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(bs) > 0 {
		query = wrapNamespace(pgUpdateBlock, ns)

		b.CreatedAt = bs[0].CreatedAt
		b.UpdatedAt = now
	} else {
		params = []interface{}{}
		query = wrapNamespace(pgInsertBlock, ns)

		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}

		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}

		b.CreatedAt = b.CreatedAt.UTC()
		b.UpdatedAt = b.UpdatedAt.UTC()
	}

	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(query, append(params, data)...)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listBlocks(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		wrapNamespace(pgCreateSchema, ns),
		wrapNamespace(pgCreateTable, ns),
		pg.GuardIndex(ns, "block_edge", pgIndexEdge),
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

func (s *pgService) countBlocks(
	ns, where string,
	params ...interface{},
) (int, error) {
	var (
		count = 0
		query = fmt.Sprintf(pgCountBlocks, ns, where)
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

func (s *pgService) listBlocks(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListBlocks, ns, where)

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

	bs := List{}

	for rows.Next() {
		var (
			b = &Block{}

			raw []byte
		)

		err := rows.Scan(&raw)
		if err != nil {
			return nil, err
		}

		err = json.Unmarshal(raw, b)
		if err != nil {
			return nil, err
		}

		bs = append(bs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bs, nil
}

func convertOpts(opts QueryOptions, ordered bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if len(opts.BlockedIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.BlockedIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseBlockedIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if opts.Enabled != nil {
		clauses = append(clauses, pgClauseEnabled)
		params = append(params, *opts.Enabled)
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

	if ordered {
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
