package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	tooLong := &pq.Error{Code: "22001", Message: "value too long for type character varying(255)"}
	fkViolation := &pq.Error{Code: "23503"}
	connFailure := &pq.Error{Code: "08006"}

	assert.True(t, IsConstraintViolation(tooLong))
	assert.True(t, IsConstraintViolation(fmt.Errorf("insert: %w", fkViolation)))
	assert.False(t, IsConstraintViolation(connFailure))
	assert.False(t, IsConstraintViolation(errors.New("boom")))
	assert.False(t, IsConstraintViolation(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
}
