/*
Package postgres bulk loads all tables into PostgreSQL.

Rows are streamed with COPY FROM STDIN. Each table is loaded in its own
transaction, which is committed by Finish. The schema and tables are created
if they do not exist. Existing rows are removed by Init.

Connections are either URLs (postgres://user@host/db?sslmode=disable) or
key=value parameters after the postgres: prefix. The options schema= and
prefix= set the schema and the table prefix.
*/
package postgres

import (
	"database/sql"
	"fmt"
	"runtime"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmtables/database"
	"github.com/omniscale/osmtables/element"
	"github.com/omniscale/osmtables/logging"
)

var log = logging.NewLogger("PostgreSQL")

const DefaultSchema = "osm"

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

type PostgreSQL struct {
	Db     *sql.DB
	Params string
	Schema string
	Prefix string
	Tables map[string]*TableSpec
	txs    map[string]*tableTx
}

// parseParams returns the lib/pq connection string, the schema and the
// table prefix of the connection params.
func parseParams(conf database.Config) (params, schema, prefix string, err error) {
	params = conf.ConnectionParams
	if strings.HasPrefix(params, "postgres://") || strings.HasPrefix(params, "postgresql://") {
		params, err = pq.ParseURL(params)
		if err != nil {
			return "", "", "", errors.Wrap(err, "parsing connection URL")
		}
	} else {
		params = strings.TrimPrefix(params, "postgresql:")
		params = strings.TrimPrefix(params, "postgres:")
	}
	params, schema, prefix = splitConnectionParams(params)
	params = disableDefaultSslOnLocalhost(params)

	if schema == "" {
		schema = conf.Schema
	}
	if schema == "" {
		schema = DefaultSchema
	}
	if prefix == "" {
		prefix = conf.TablePrefix
	}
	return params, schema, prefix, nil
}

func newPostgreSQL(conf database.Config) (*PostgreSQL, error) {
	params, schema, prefix, err := parseParams(conf)
	if err != nil {
		return nil, err
	}
	pg := &PostgreSQL{
		Params: params,
		Schema: schema,
		Prefix: prefix,
		Tables: make(map[string]*TableSpec),
	}
	for _, t := range element.Tables {
		pg.Tables[t.Name] = NewTableSpec(schema, prefix, t)
	}
	return pg, nil
}

func New(conf database.Config) (database.RowWriter, error) {
	pg, err := newPostgreSQL(conf)
	if err != nil {
		return nil, err
	}
	if err := pg.Open(); err != nil {
		return nil, err
	}
	return pg, nil
}

func (pg *PostgreSQL) Open() error {
	var err error
	pg.Db, err = sql.Open("postgres", pg.Params)
	if err != nil {
		return err
	}
	// check that the connection actually works
	if err := pg.Db.Ping(); err != nil {
		pg.Db.Close()
		return err
	}
	return nil
}

func (pg *PostgreSQL) createSchema() error {
	if pg.Schema == "public" {
		return nil
	}
	sql := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(pg.Schema))
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Init creates the schema and tables, removes existing rows and starts
// one COPY transaction per table.
func (pg *PostgreSQL) Init() error {
	if err := pg.createSchema(); err != nil {
		return err
	}

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)
	for _, t := range element.Tables {
		spec := pg.Tables[t.Name]
		for _, sql := range []string{spec.CreateTableSQL(), spec.TruncateSQL()} {
			if _, err := tx.Exec(sql); err != nil {
				return &SQLError{sql, err}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil

	pg.txs = make(map[string]*tableTx, len(pg.Tables))
	for _, t := range element.Tables {
		tt := newTableTx(pg, pg.Tables[t.Name])
		if err := tt.Begin(); err != nil {
			tt.Rollback()
			pg.Abort()
			return err
		}
		pg.txs[t.Name] = tt
	}
	return nil
}

func (pg *PostgreSQL) Insert(table string, row []interface{}) error {
	tt, ok := pg.txs[table]
	if !ok {
		return errors.Errorf("unknown table %q", table)
	}
	return tt.Insert(row)
}

// Finish commits all tables and creates the id indices.
func (pg *PostgreSQL) Finish() error {
	step := log.StartStep("Committing tables")
	for _, t := range element.Tables {
		if err := pg.txs[t.Name].Commit(); err != nil {
			log.StopStep(step)
			pg.Abort()
			return err
		}
	}
	log.StopStep(step)

	defer log.StopStep(log.StartStep("Creating id indices"))
	g := errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, t := range element.Tables {
		spec := pg.Tables[t.Name]
		for _, sql := range spec.IndexSQL() {
			sql := sql
			g.Go(func() error {
				if _, err := pg.Db.Exec(sql); err != nil {
					return &SQLError{sql, err}
				}
				return nil
			})
		}
	}
	return g.Wait()
}

func (pg *PostgreSQL) Abort() error {
	for _, tt := range pg.txs {
		tt.Rollback()
	}
	return nil
}

func (pg *PostgreSQL) Close() error {
	return pg.Db.Close()
}

func init() {
	database.Register("postgres", New)
}
