package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a SQLSTATE 23505 from the driver,
// so repositories can surface conflicts as domain errors instead of raw
// store errors.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation
}
