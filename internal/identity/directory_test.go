package identity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateGrant(t *testing.T) {
	assert.True(t, isDuplicateGrant(gorm.ErrDuplicatedKey))
	// the postgres translator wraps the driver error; a wrapped duplicate
	// must still read as idempotent
	assert.True(t, isDuplicateGrant(fmt.Errorf("create user_role: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, isDuplicateGrant(gorm.ErrInvalidTransaction))
	assert.False(t, isDuplicateGrant(nil))
}
