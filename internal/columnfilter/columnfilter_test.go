package columnfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsExcluded(t *testing.T) {
	c := NewChecker([]string{" EmployeeNumber ", "", "Over18"}, zap.NewNop())

	assert.True(t, c.IsExcluded("EmployeeNumber"))
	assert.True(t, c.IsExcluded("employeenumber"))
	assert.True(t, c.IsExcluded("OVER18"))
	assert.False(t, c.IsExcluded("Age"))
	assert.False(t, c.IsExcluded(""))
}

func TestEmptyCheckerExcludesNothing(t *testing.T) {
	c := NewChecker(nil, nil)
	assert.False(t, c.IsExcluded("EmployeeNumber"))
}
