// Package store holds the SQL queries behind every persisted type. Functions
// return nil (and no error) when a single looked-up row does not exist.
package store

import (
	"strings"

	"github.com/erazemk/zaloga/internal/db"
)

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere, for use with
// foldLike(col).
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(db.Fold(s)) + "%"
}

// foldLike returns a condition matching col case-insensitively against a
// containsPattern argument.
func foldLike(col string) string {
	return db.FoldFunc + "(" + col + `) LIKE ? ESCAPE '\'`
}
