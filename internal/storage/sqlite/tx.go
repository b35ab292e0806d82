package sqlite

import "database/sql"

// txImpl implements storage.Tx against an open *sql.Tx.
type txImpl struct {
	tx *sql.Tx
}
