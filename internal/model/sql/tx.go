package sql

import (
	"context"
	dbsql "database/sql"
	"fmt"

	"stopbonus/internal/entity"

	"gorm.io/gorm"
)

type txKey struct{}

// TxOptions 控制事务的隔离级别和只读标记。
type TxOptions struct {
	Isolation dbsql.IsolationLevel
	ReadOnly  bool
}

// TxOption mutates TxOptions.
type TxOption func(*TxOptions)

// WithIsolation sets the isolation level. The default is serializable.
func WithIsolation(level dbsql.IsolationLevel) TxOption {
	return func(o *TxOptions) { o.Isolation = level }
}

// ReadOnly marks the unit of work as read-only where the driver supports it.
func ReadOnly() TxOption {
	return func(o *TxOptions) { o.ReadOnly = true }
}

// InTransaction reports whether ctx already carries a unit of work.
func InTransaction(ctx context.Context) bool {
	return txFromContext(ctx) != nil
}

func txFromContext(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// Transaction runs fn inside one unit of work and blocks until it commits or
// rolls back. fn receives a context carrying the transaction; every
// repository call made with that context joins it.
//
// If ctx already carries a transaction, fn runs inside it and the options
// are ignored: no savepoint and no second connection.
func (r *GormRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error, opts ...TxOption) error {
	if r == nil || r.db == nil {
		return entity.Storage("Transaction", errNotInitialised)
	}
	if fn == nil {
		return nil
	}
	if InTransaction(ctx) {
		return fn(ctx)
	}

	o := TxOptions{Isolation: dbsql.LevelSerializable}
	for _, opt := range opts {
		opt(&o)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &dbsql.TxOptions{Isolation: o.Isolation, ReadOnly: o.ReadOnly})
}

// TransactionAsync 在独立的 goroutine 中执行 Transaction，结果通过通道返回一次后关闭。
// 取消 ctx 会让尚未提交的事务回滚，通道中返回对应的 context 错误。
// 在已有事务的 ctx 上调用时会加入该事务，调用方必须在外层事务结束前等待结果。
func (r *GormRepository) TransactionAsync(ctx context.Context, fn func(ctx context.Context) error, opts ...TxOption) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				done <- entity.Storage("TransactionAsync", fmt.Errorf("panic in transaction: %v", p))
			}
		}()
		done <- r.Transaction(ctx, fn, opts...)
	}()
	return done
}

// run executes fn with the transaction carried by ctx, opening a new unit of
// work when there is none.
func (r *GormRepository) run(ctx context.Context, fn func(tx *gorm.DB) error, opts ...TxOption) error {
	if tx := txFromContext(ctx); tx != nil {
		return fn(tx.WithContext(ctx))
	}
	return r.Transaction(ctx, func(ctx context.Context) error {
		return fn(txFromContext(ctx))
	}, opts...)
}
