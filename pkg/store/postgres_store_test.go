package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS receipts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresStore(db)
	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	r := testChain(t, 1)[0]

	mock.ExpectExec("INSERT INTO receipts").
		WithArgs(r.Index, r.Timestamp, r.Operation, r.InputDigest, r.OutputDigest, r.PreviousDigest, r.SelfDigest).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s := NewPostgresStore(db)
	require.NoError(t, s.Append(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendFailureIsIOFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	r := testChain(t, 1)[0]

	mock.ExpectExec("INSERT INTO receipts").
		WillReturnError(errors.New("connection reset"))

	s := NewPostgresStore(db)
	err = s.Append(context.Background(), r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAppendFailed), "got %v", err)
}

func TestPostgresStoreLoadOrdersByIndex(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	chain := testChain(t, 2)
	rows := sqlmock.NewRows([]string{"idx", "ts", "operation", "input_digest", "output_digest", "prev_digest", "self_digest"})
	for _, r := range chain {
		rows.AddRow(r.Index, r.Timestamp, r.Operation, r.InputDigest, r.OutputDigest, r.PreviousDigest, r.SelfDigest)
	}

	mock.ExpectQuery("SELECT idx, ts, operation, input_digest, output_digest, prev_digest, self_digest").
		WillReturnRows(rows)

	s := NewPostgresStore(db)
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLoadRejectsIndexGap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	chain := testChain(t, 3)
	rows := sqlmock.NewRows([]string{"idx", "ts", "operation", "input_digest", "output_digest", "prev_digest", "self_digest"})
	rows.AddRow(chain[0].Index, chain[0].Timestamp, chain[0].Operation, chain[0].InputDigest, chain[0].OutputDigest, chain[0].PreviousDigest, chain[0].SelfDigest)
	rows.AddRow(chain[2].Index, chain[2].Timestamp, chain[2].Operation, chain[2].InputDigest, chain[2].OutputDigest, chain[2].PreviousDigest, chain[2].SelfDigest)

	mock.ExpectQuery("SELECT idx, ts").WillReturnRows(rows)

	s := NewPostgresStore(db)
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreCorrupted), "got %v", err)
}
