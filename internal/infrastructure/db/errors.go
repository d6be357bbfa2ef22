package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	classDataException      pq.ErrorClass = "22"
	classIntegrityViolation pq.ErrorClass = "23"
)

// IsConstraintViolation reports whether err is a Postgres data exception
// (e.g. value too long for a column) or an integrity constraint violation.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	class := pqErr.Code.Class()
	return class == classDataException || class == classIntegrityViolation
}

// IsUniqueViolation reports whether err is a unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
