package cardstatsdb

import "github.com/uptrace/bun"

// DefaultBatchSize bounds the rows sent in one INSERT statement.
const DefaultBatchSize = 5000

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db        bun.IDB
	batchSize int
}

// NewRepository creates a new card statistics repository. A non-positive
// batchSize selects DefaultBatchSize.
func NewRepository(db bun.IDB, batchSize int) Repository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Impl{db: db, batchSize: batchSize}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}
