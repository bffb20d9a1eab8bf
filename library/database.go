package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

const dateLayout = time.DateOnly

// Database stores the library snapshot in SQLite. The whole state is written
// and read in single transactions at session boundaries.
type Database struct {
	db *sql.DB

	insertBookStmt   *sql.Stmt
	insertMemberStmt *sql.Stmt
	insertEntryStmt  *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.insertBookStmt, d.insertMemberStmt, d.insertEntryStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Ledger rows outlive removed members and books, so there are no
	// foreign keys between the tables.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            email TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            age INTEGER NOT NULL,
            password_hash TEXT NOT NULL,
            borrowed TEXT NOT NULL DEFAULT '[]',
            loans TEXT NOT NULL DEFAULT '[]',
            reserved TEXT NOT NULL DEFAULT '[]',
            notifications TEXT NOT NULL DEFAULT '[]',
            position INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            isbn TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            description TEXT NOT NULL,
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL,
            queue TEXT NOT NULL DEFAULT '[]',
            position INTEGER NOT NULL,
            CHECK (available_copies >= 0 AND available_copies <= total_copies)
        );`,
		`CREATE TABLE IF NOT EXISTS ledger (
            id TEXT PRIMARY KEY,
            member_email TEXT NOT NULL,
            isbn TEXT NOT NULL,
            borrow_date TEXT NOT NULL,
            due_date TEXT NOT NULL,
            return_date TEXT,
            paid_date TEXT,
            position INTEGER NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.insertBookStmt, err = d.db.Prepare(`INSERT INTO books(isbn,title,author,genre,description,total_copies,available_copies,queue,position) VALUES(?,?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.insertMemberStmt, err = d.db.Prepare(`INSERT INTO members(email,name,age,password_hash,borrowed,loans,reserved,notifications,position) VALUES(?,?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.insertEntryStmt, err = d.db.Prepare(`INSERT INTO ledger(id,member_email,isbn,borrow_date,due_date,return_date,paid_date,position) VALUES(?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// SaveSnapshot replaces the stored state with snap in one transaction.
func (d *Database) SaveSnapshot(snap Snapshot) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"books", "members", "ledger"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertBook := tx.Stmt(d.insertBookStmt)
	for i, b := range snap.Books {
		queue, err := encodeList(b.Queue)
		if err != nil {
			return err
		}
		if _, err := insertBook.Exec(b.ISBN, b.Title, b.Author, b.Genre, b.Description, b.TotalCopies, b.AvailableCopies, queue, i); err != nil {
			return fmt.Errorf("save book %s: %w", b.ISBN, err)
		}
	}

	insertMember := tx.Stmt(d.insertMemberStmt)
	for i, m := range snap.Members {
		lists := make([]string, 4)
		for j, l := range [][]string{m.Borrowed, m.Loans, m.Reserved, m.Notifications} {
			if lists[j], err = encodeList(l); err != nil {
				return err
			}
		}
		if _, err := insertMember.Exec(m.Email, m.Name, m.Age, m.PasswordHash, lists[0], lists[1], lists[2], lists[3], i); err != nil {
			return fmt.Errorf("save member %s: %w", m.Email, err)
		}
	}

	insertEntry := tx.Stmt(d.insertEntryStmt)
	for i, e := range snap.Ledger {
		if _, err := insertEntry.Exec(e.ID, e.MemberEmail, e.ISBN,
			e.BorrowDate.Format(dateLayout), e.DueDate.Format(dateLayout),
			formatDate(e.ReturnDate), formatDate(e.PaidDate), i); err != nil {
			return fmt.Errorf("save ledger entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored state in one transaction.
func (d *Database) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot
	tx, err := d.db.Begin()
	if err != nil {
		return snap, err
	}
	defer tx.Rollback()

	if snap.Books, err = loadBooks(tx); err != nil {
		return snap, err
	}
	if snap.Members, err = loadMembers(tx); err != nil {
		return snap, err
	}
	if snap.Ledger, err = loadLedger(tx); err != nil {
		return snap, err
	}
	return snap, tx.Commit()
}

func loadBooks(tx *sql.Tx) ([]*Book, error) {
	rows, err := tx.Query(`SELECT isbn,title,author,genre,description,total_copies,available_copies,queue FROM books ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var (
			b     Book
			queue string
		)
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.Genre, &b.Description, &b.TotalCopies, &b.AvailableCopies, &queue); err != nil {
			return nil, err
		}
		if b.Queue, err = decodeList(queue); err != nil {
			return nil, fmt.Errorf("book %s queue: %w", b.ISBN, err)
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

func loadMembers(tx *sql.Tx) ([]*Member, error) {
	rows, err := tx.Query(`SELECT email,name,age,password_hash,borrowed,loans,reserved,notifications FROM members ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var (
			m                                        Member
			borrowed, loans, reserved, notifications string
		)
		if err := rows.Scan(&m.Email, &m.Name, &m.Age, &m.PasswordHash, &borrowed, &loans, &reserved, &notifications); err != nil {
			return nil, err
		}
		if m.Borrowed, err = decodeList(borrowed); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Email, err)
		}
		if m.Loans, err = decodeList(loans); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Email, err)
		}
		if m.Reserved, err = decodeList(reserved); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Email, err)
		}
		if m.Notifications, err = decodeList(notifications); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Email, err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func loadLedger(tx *sql.Tx) ([]*LedgerEntry, error) {
	rows, err := tx.Query(`SELECT id,member_email,isbn,borrow_date,due_date,return_date,paid_date FROM ledger ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*LedgerEntry
	for rows.Next() {
		var (
			e              LedgerEntry
			borrowed, due  string
			returned, paid sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.MemberEmail, &e.ISBN, &borrowed, &due, &returned, &paid); err != nil {
			return nil, err
		}
		if e.BorrowDate, err = time.Parse(dateLayout, borrowed); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", e.ID, err)
		}
		if e.DueDate, err = time.Parse(dateLayout, due); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", e.ID, err)
		}
		if e.ReturnDate, err = parseDate(returned); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", e.ID, err)
		}
		if e.PaidDate, err = parseDate(paid); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func encodeList(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	return jsoniter.ConfigFastest.MarshalToString(l)
}

func decodeList(s string) ([]string, error) {
	var l []string
	if err := jsoniter.ConfigFastest.UnmarshalFromString(s, &l); err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return nil, nil
	}
	return l, nil
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
