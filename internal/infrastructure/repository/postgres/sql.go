package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-sync/internal/domain/league"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// jsonDocument stores a league.Document in a JSONB column. NULL scans to an empty document.
type jsonDocument league.Document

func (d jsonDocument) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	raw, err := sonic.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("marshal json document: %w", err)
	}
	return string(raw), nil
}

func (d *jsonDocument) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	out := make(map[string]any)
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("unmarshal json document: %w", err)
		}
	}
	*d = jsonDocument(out)
	return nil
}

// jsonStrings stores a string list in a JSONB array column.
type jsonStrings []string

func (s jsonStrings) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := sonic.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("marshal json strings: %w", err)
	}
	return string(raw), nil
}

func (s *jsonStrings) Scan(src any) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return err
	}
	out := make([]string, 0)
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("unmarshal json strings: %w", err)
		}
	}
	*s = out
	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}

func nullIntFromPtr(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullIntToPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
