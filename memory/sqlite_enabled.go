//go:build !without_sqlite

package memory

func newSqliteStore(path string, dim int) (Store, error) {
	return NewSqliteStore(path, dim)
}
