package persistence

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// sqliteDriverName is go-sqlite3 with a Unicode-aware LOWER. The built-in
// LOWER only folds ASCII, so "Ñandú" would never match a search for "ñandú".
const sqliteDriverName = "sqlite3_stockroom"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", sqliteLower, true)
		},
	})
}

// sqliteLower case-folds text like foldKey, without trimming
func sqliteLower(v any) any {
	switch s := v.(type) {
	case string:
		return cases.Fold().String(s)
	case []byte:
		if s == nil {
			return nil
		}
		return cases.Fold().String(string(s))
	default:
		return v
	}
}
