package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

const (
	selectQuantitySQL = `SELECT quantity FROM inventories WHERE product_id = ?`
	upsertSQL         = `INSERT INTO inventories (product_id, quantity) VALUES (?, ?)`
)

func newMockAdapter(t *testing.T) (*MySQLAdapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMySQLAdapter(db), mock
}

func TestGetQuantity_Found(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuantitySQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(50))

	qty, found, err := adapter.GetQuantity(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || qty != 50 {
		t.Errorf("expected found quantity 50, got %d (found=%v)", qty, found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetQuantity_NotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectQuantitySQL)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

	qty, found, err := adapter.GetQuantity(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || qty != 0 {
		t.Errorf("expected missing record, got %d (found=%v)", qty, found)
	}
}

func TestGetQuantity_Error(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	boom := errors.New("server has gone away")
	mock.ExpectQuery(regexp.QuoteMeta(selectQuantitySQL)).
		WithArgs(int64(3)).
		WillReturnError(boom)

	_, _, err := adapter.GetQuantity(context.Background(), 3)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped driver error, got: %v", err)
	}
}

func TestUpsert_SingleStatement(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
		WithArgs(int64(1), 45).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := adapter.Upsert(context.Background(), domain.Inventory{ProductID: 1, Quantity: 45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsert_Error(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
		WithArgs(int64(1), 45).
		WillReturnError(errors.New("lock wait timeout"))

	if err := adapter.Upsert(context.Background(), domain.Inventory{ProductID: 1, Quantity: 45}); err == nil {
		t.Error("expected error")
	}
}

// Live tests below need a reachable MySQL and skip otherwise.

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS inventories (
			product_id BIGINT NOT NULL PRIMARY KEY,
			quantity INT NOT NULL
		)`)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	return db
}

func TestLiveUpsert_UpdatesInPlace(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	productID := time.Now().UnixNano()
	defer db.ExecContext(ctx, `DELETE FROM inventories WHERE product_id = ?`, productID)

	if err := adapter.Upsert(ctx, domain.Inventory{ProductID: productID, Quantity: 50}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := adapter.Upsert(ctx, domain.Inventory{ProductID: productID, Quantity: 45}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventories WHERE product_id = ?`, productID).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	qty, found, err := adapter.GetQuantity(ctx, productID)
	if err != nil || !found || qty != 45 {
		t.Errorf("expected quantity 45, got %d (found=%v, err=%v)", qty, found, err)
	}
}

func TestLiveUpsert_ConcurrentFirstWrites(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	productID := time.Now().UnixNano()
	defer db.ExecContext(ctx, `DELETE FROM inventories WHERE product_id = ?`, productID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			if err := adapter.Upsert(ctx, domain.Inventory{ProductID: productID, Quantity: q}); err != nil {
				t.Errorf("upsert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventories WHERE product_id = ?`, productID).Scan(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 row, got %d", count)
	}
}
