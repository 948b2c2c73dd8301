package store

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// driverName is go-sqlite3 with the fold() SQL function registered on
// every connection.
const driverName = "sqlite3_daleel"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", foldText, true)
		},
	})
}

// foldText returns the Unicode case fold of the NFC form of s, so "É" and
// "é" compare equal. SQLite's own LIKE folds ASCII only.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
