package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"homeboard/internal/model"
)

const (
	codeTTL         = 15 * time.Minute
	maxCodeAttempts = 5
)

type LoginCodeStore struct {
	db *sql.DB
}

func NewLoginCodeStore(db *sql.DB) *LoginCodeStore {
	return &LoginCodeStore{db: db}
}

func scanLoginCode(scanner interface{ Scan(...any) error }) (*model.LoginCode, string, error) {
	var lc model.LoginCode
	var hash string
	var homeID sql.NullInt64
	var usedAt sql.NullTime

	err := scanner.Scan(
		&lc.ID, &hash, &lc.Email, &lc.Purpose, &homeID,
		&lc.ExpiresAt, &usedAt, &lc.Attempts, &lc.CreatedAt,
	)
	if err != nil {
		return nil, "", err
	}
	if homeID.Valid {
		lc.HomeID = &homeID.Int64
	}
	if usedAt.Valid {
		lc.UsedAt = &usedAt.Time
	}
	return &lc, hash, nil
}

const loginCodeCols = `id, code_hash, email, purpose, home_id, expires_at, used_at, attempts, created_at`

// generateCode returns a 6-digit numeric code (100000–999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Create issues a new 6-digit code for the email with a 15-minute expiry,
// invalidating any previous pending codes for the same address. The
// plaintext code is returned once for emailing; only its bcrypt hash is
// stored.
func (s *LoginCodeStore) Create(email, purpose string, homeID *int64) (string, *model.LoginCode, error) {
	_, err := s.db.Exec(
		`UPDATE login_codes SET used_at = datetime('now')
		 WHERE email = ? AND used_at IS NULL AND expires_at > datetime('now')`,
		email,
	)
	if err != nil {
		return "", nil, fmt.Errorf("invalidate previous codes: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return "", nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash code: %w", err)
	}
	expiresAt := time.Now().UTC().Add(codeTTL)

	var hID sql.NullInt64
	if homeID != nil {
		hID = sql.NullInt64{Int64: *homeID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO login_codes (code_hash, email, purpose, home_id, expires_at) VALUES (?, ?, ?, ?, ?)`,
		string(hash), email, purpose, hID, expiresAt,
	)
	if err != nil {
		return "", nil, fmt.Errorf("insert login code: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+loginCodeCols+` FROM login_codes WHERE id = ?`, id)
	lc, _, err := scanLoginCode(row)
	if err != nil {
		return "", nil, fmt.Errorf("get login code: %w", err)
	}
	return code, lc, nil
}

// Verify checks a submitted code against the email's pending code. On
// success the code is consumed and returned; on mismatch the attempt
// counter is incremented (the code burns after 5 failures) and nil, nil is
// returned. An email with no pending code also yields nil, nil.
func (s *LoginCodeStore) Verify(email, code string) (*model.LoginCode, error) {
	row := s.db.QueryRow(
		`SELECT `+loginCodeCols+` FROM login_codes
		 WHERE email = ? AND used_at IS NULL AND expires_at > datetime('now')
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		email,
	)
	lc, hash, err := scanLoginCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending code: %w", err)
	}

	if lc.Attempts >= maxCodeAttempts {
		return nil, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		attempts := lc.Attempts + 1
		if attempts >= maxCodeAttempts {
			_, err = s.db.Exec(
				`UPDATE login_codes SET attempts = ?, used_at = datetime('now') WHERE id = ?`,
				attempts, lc.ID,
			)
		} else {
			_, err = s.db.Exec(`UPDATE login_codes SET attempts = ? WHERE id = ?`, attempts, lc.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, nil
	}

	if _, err := s.db.Exec(`UPDATE login_codes SET used_at = datetime('now') WHERE id = ?`, lc.ID); err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}
	return lc, nil
}

// DeleteExpired removes expired and used codes older than a day.
func (s *LoginCodeStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM login_codes WHERE expires_at <= datetime('now', '-1 day')`,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
