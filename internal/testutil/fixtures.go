package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func SeedUser(t *testing.T, db *sql.DB, email, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, email, name, string(hash), time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func SeedAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balance int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, balance, version, created_at)
		 VALUES ($1, $2, $3, 1, $4)`,
		id, userID, balance, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return id
}

func SeedStore(t *testing.T, db *sql.DB, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO stores (id, user_id, name, description, business_number, owner_name, phone_number, created_at)
		 VALUES ($1, $2, $3, '', '123-45-67890', 'Owner', '', $4)`,
		id, userID, name, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return id
}

func SeedProduct(t *testing.T, db *sql.DB, storeID uuid.UUID, name string, price int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO products (id, store_id, name, category, sub_category, price, created_at)
		 VALUES ($1, $2, $3, '', '', $4, $5)`,
		id, storeID, name, price, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	if err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
		t.Fatalf("get account balance: %v", err)
	}
	return balance
}

func CountLedgerEntries(t *testing.T, db *sql.DB, accountID uuid.UUID, kind string) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1 AND kind = $2`,
		accountID, kind,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries: %v", err)
	}
	return count
}

func GetShipmentStatus(t *testing.T, db *sql.DB, shipmentID uuid.UUID) string {
	t.Helper()

	var status string
	if err := db.QueryRow(`SELECT status FROM shipments WHERE id = $1`, shipmentID).Scan(&status); err != nil {
		t.Fatalf("get shipment status: %v", err)
	}
	return status
}

func CountShipments(t *testing.T, db *sql.DB, buyerID uuid.UUID) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM shipments WHERE buyer_id = $1`, buyerID).Scan(&count); err != nil {
		t.Fatalf("count shipments: %v", err)
	}
	return count
}

func CountNotifications(t *testing.T, db *sql.DB, kind string) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE kind = $1`, kind).Scan(&count); err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return count
}
