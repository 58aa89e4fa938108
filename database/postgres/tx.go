package postgres

import (
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// tableTx streams the rows of one table with COPY FROM STDIN in its own
// transaction. Rows are sent through a channel to a single goroutine.
type tableTx struct {
	Pg      *PostgreSQL
	Tx      *sql.Tx
	Spec    *TableSpec
	CopySQL string
	stmt    *sql.Stmt
	wg      *sync.WaitGroup
	rows    chan []interface{}

	mu  sync.Mutex
	err error
}

func newTableTx(pg *PostgreSQL, spec *TableSpec) *tableTx {
	return &tableTx{
		Pg:   pg,
		Spec: spec,
		wg:   &sync.WaitGroup{},
		rows: make(chan []interface{}, 64),
	}
}

func (tt *tableTx) Begin() error {
	tx, err := tt.Pg.Db.Begin()
	if err != nil {
		return err
	}
	tt.Tx = tx

	tt.CopySQL = tt.Spec.CopySQL()
	stmt, err := tt.Tx.Prepare(tt.CopySQL)
	if err != nil {
		return &SQLError{tt.CopySQL, err}
	}
	tt.stmt = stmt

	tt.wg.Add(1)
	go tt.loop()
	return nil
}

func (tt *tableTx) Insert(row []interface{}) error {
	if err := tt.Err(); err != nil {
		return err
	}
	if tt.rows == nil {
		return errors.Errorf("insert into %s after commit", tt.Spec.FullName)
	}
	tt.rows <- tt.Spec.values(row)
	return nil
}

// loop keeps draining rows after the first error so that Insert never
// blocks.
func (tt *tableTx) loop() {
	defer tt.wg.Done()
	for row := range tt.rows {
		if tt.Err() != nil {
			continue
		}
		if _, err := tt.stmt.Exec(row...); err != nil {
			tt.setErr(&SQLInsertError{SQLError{tt.CopySQL, err}, row})
		}
	}
}

func (tt *tableTx) setErr(err error) {
	tt.mu.Lock()
	if tt.err == nil {
		tt.err = err
	}
	tt.mu.Unlock()
}

func (tt *tableTx) Err() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.err
}

func (tt *tableTx) end() {
	if tt.rows != nil {
		close(tt.rows)
		tt.wg.Wait()
		tt.rows = nil
	}
}

// Commit flushes the COPY stream and commits the transaction.
func (tt *tableTx) Commit() error {
	tt.end()
	if err := tt.Err(); err != nil {
		return err
	}
	if _, err := tt.stmt.Exec(); err != nil {
		return &SQLError{tt.CopySQL, err}
	}
	if err := tt.stmt.Close(); err != nil {
		return &SQLError{tt.CopySQL, err}
	}
	if err := tt.Tx.Commit(); err != nil {
		return err
	}
	tt.Tx = nil
	return nil
}

func (tt *tableTx) Rollback() {
	tt.end()
	rollbackIfTx(&tt.Tx)
}
