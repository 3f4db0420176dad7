package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xAbC1", "abc1"))
	assert.True(t, SameAddress("0XABC1", "0xabc1"))
	assert.False(t, SameAddress("0xabc1", "0xabc2"))
}

func TestInAddress(t *testing.T) {
	as := []string{"0xAbC1", "def2"}

	assert.True(t, InAddress(as, "0xabc1"))
	assert.True(t, InAddress(as, "abc1"))
	assert.True(t, InAddress(as, "0XDEF2"))
	assert.False(t, InAddress(as, "0xabc"))
	assert.False(t, InAddress(nil, "0xabc1"))
}
