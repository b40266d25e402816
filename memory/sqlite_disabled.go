//go:build without_sqlite

package memory

import "github.com/habiliai/agenteat/errors"

func newSqliteStore(string, int) (Store, error) {
	return nil, errors.Wrapf(errors.ErrInvalidConfig, "built without sqlite support, set MEMORY_STORE=memory")
}
