package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &Store{db: db, logger: zap.NewNop()}, mock
}

func TestGetAllWrapsQueryError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`SELECT payload FROM sheep`).WillReturnError(errors.New("disk I/O error"))

	_, err := s.GetAll(context.Background(), store.Sheep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select sheep")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSendsIDAndPayload(t *testing.T) {
	s, mock := newMock(t)
	doc := []byte(`{"id":"BRD-1"}`)
	mock.ExpectExec(`INSERT INTO breeders`).
		WithArgs("BRD-1", doc, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Put(context.Background(), store.Breeders, "BRD-1", doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWrapsExecError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM production WHERE id = \?`).
		WithArgs("P-1").
		WillReturnError(errors.New("database is locked"))

	err := s.Remove(context.Background(), store.Production, "P-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete production/P-1")
}

func TestUnknownTableNeverReachesDatabase(t *testing.T) {
	s, mock := newMock(t)
	_, err := s.GetAll(context.Background(), store.Table("goats"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
