package lexicon

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is the current tabular-store schema version. OpenTabularStore
// refuses to read a file stamped with a newer version than it understands.
const schemaVersion = 1

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS lexicon (
	original_term    TEXT NOT NULL,
	variations       TEXT,
	transliteration  TEXT NOT NULL,
	category         TEXT,
	confidence       REAL,
	context_clues    TEXT,
	is_compound      BOOLEAN,
	asr_common_error BOOLEAN,
	error_type       TEXT,
	frequency_rating TEXT,
	source_authority TEXT,
	difficulty_level TEXT
);

CREATE INDEX IF NOT EXISTS idx_lexicon_original_term_lower
	ON lexicon (original_term COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_lexicon_category ON lexicon (category);
CREATE INDEX IF NOT EXISTS idx_lexicon_asr_common_error
	ON lexicon (asr_common_error) WHERE asr_common_error = 1;
`

// OpenTabularStore opens the on-disk lexicon database at path and returns
// every row it holds. When path does not exist or cannot be opened, it
// returns (nil, false, nil) rather than an error — per spec.md §4.B
// "missing tabular store degrades gracefully to overlay-only operation with
// a warning" — the warning itself is the caller's responsibility (it has
// the file path context to log usefully).
//
// If the file exists but its schema_version is newer than this binary
// understands, OpenTabularStore returns a non-nil error (a migration
// mismatch is a data error the caller should surface, not silently ignore).
func OpenTabularStore(path string) (rows []Row, available bool, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, false, nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, false, nil
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, false, nil
	}

	version, err := readSchemaVersion(db)
	if err != nil {
		return nil, false, nil
	}
	if version > schemaVersion {
		return nil, false, fmt.Errorf("lexicon: tabular store schema_version %d is newer than supported version %d", version, schemaVersion)
	}

	rows, err = queryRows(db)
	if err != nil {
		return nil, false, fmt.Errorf("lexicon: query tabular store: %w", err)
	}
	return rows, true, nil
}

// CreateTabularStore initializes a fresh on-disk lexicon database at path
// with the schema of spec.md §6, stamping it with the current
// schema_version. Used by tests and by first-run setup; the repository does
// not ship the lexicon-maintenance tooling that normally populates this
// file from YAML sources (spec.md §1 "out of scope").
func CreateTabularStore(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("lexicon: create tabular store: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(createSchemaSQL); err != nil {
		return fmt.Errorf("lexicon: create schema: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("lexicon: read schema_version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("lexicon: stamp schema_version: %w", err)
		}
	}
	return nil
}

// InsertRow inserts a single row into an existing tabular store. Intended
// for tests that need a populated store without shelling out to the
// (out-of-scope) maintenance tooling.
func InsertRow(path string, row Row) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("lexicon: insert row: %w", err)
	}
	defer db.Close()

	variations, err := json.Marshal(row.Variations)
	if err != nil {
		return fmt.Errorf("lexicon: marshal variations: %w", err)
	}
	clues, err := json.Marshal(row.ContextClues)
	if err != nil {
		return fmt.Errorf("lexicon: marshal context_clues: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO lexicon (
			original_term, variations, transliteration, category, confidence,
			context_clues, is_compound, asr_common_error, error_type,
			frequency_rating, source_authority, difficulty_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.OriginalTerm, string(variations), row.Transliteration, string(row.Category),
		row.Confidence, string(clues), row.IsCompound, row.ASRCommonError, row.ErrorType,
		row.FrequencyRating, row.SourceAuthority, row.DifficultyLevel,
	)
	if err != nil {
		return fmt.Errorf("lexicon: insert row %q: %w", row.OriginalTerm, err)
	}
	return nil
}

func readSchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func queryRows(db *sql.DB) ([]Row, error) {
	sqlRows, err := db.Query(`
		SELECT original_term, variations, transliteration, category, confidence,
		       context_clues, is_compound, asr_common_error, error_type,
		       frequency_rating, source_authority, difficulty_level
		FROM lexicon`)
	if err != nil {
		return nil, err
	}
	defer sqlRows.Close()

	var rows []Row
	for sqlRows.Next() {
		var r Row
		var category, variationsJSON, cluesJSON sql.NullString
		var confidence sql.NullFloat64
		var isCompound, asrCommonError sql.NullBool

		if err := sqlRows.Scan(
			&r.OriginalTerm, &variationsJSON, &r.Transliteration, &category, &confidence,
			&cluesJSON, &isCompound, &asrCommonError, &r.ErrorType,
			&r.FrequencyRating, &r.SourceAuthority, &r.DifficultyLevel,
		); err != nil {
			return nil, err
		}

		r.Category = Category(category.String)
		r.Confidence = confidence.Float64
		r.IsCompound = isCompound.Bool
		r.ASRCommonError = asrCommonError.Bool

		if variationsJSON.String != "" {
			if err := json.Unmarshal([]byte(variationsJSON.String), &r.Variations); err != nil {
				slog.Warn("lexicon: malformed variations column, skipping field", "term", r.OriginalTerm, "err", err)
			}
		}
		if cluesJSON.String != "" {
			if err := json.Unmarshal([]byte(cluesJSON.String), &r.ContextClues); err != nil {
				slog.Warn("lexicon: malformed context_clues column, skipping field", "term", r.OriginalTerm, "err", err)
			}
		}

		rows = append(rows, r)
	}
	return rows, sqlRows.Err()
}
