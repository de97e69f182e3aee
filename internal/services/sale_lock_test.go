package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireTicketLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewSaleLockService(db, 30*time.Second)

	mock.ExpectSetNX("sale:lock:T1", 1, 30*time.Second).SetVal(true)

	locked, err := service.AcquireTicketLock(context.Background(), "T1")
	require.NoError(t, err)
	assert.True(t, locked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireTicketLock_AlreadyHeld(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewSaleLockService(db, 30*time.Second)

	mock.ExpectSetNX("sale:lock:T1", 1, 30*time.Second).SetVal(false)

	locked, err := service.AcquireTicketLock(context.Background(), "T1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestAcquireTicketLock_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewSaleLockService(db, 30*time.Second)

	mock.ExpectSetNX("sale:lock:T1", 1, 30*time.Second).SetErr(assert.AnError)

	locked, err := service.AcquireTicketLock(context.Background(), "T1")
	assert.Error(t, err)
	assert.False(t, locked)
}

func TestReleaseTicketLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewSaleLockService(db, 30*time.Second)

	mock.ExpectDel("sale:lock:T1").SetVal(1)

	service.ReleaseTicketLock(context.Background(), "T1")

	assert.NoError(t, mock.ExpectationsWereMet())
}
