// Package testutil provides shared helpers for tests.
package testutil

import "context"

// PassthroughTxManager implements database.TxManager without a real
// transaction, invoking the function directly. Use it in use case tests where
// repositories are mocked.
type PassthroughTxManager struct {
	// CalledTimes counts WithTx invocations.
	CalledTimes int
}

// WithTx runs fn with the unchanged context.
func (m *PassthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.CalledTimes++
	return fn(ctx)
}
