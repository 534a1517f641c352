package conversation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPairKeySymmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, PairKey(a, b), PairKey(b, a))
}

func TestPairKeyOrdersLexicographically(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	key := PairKey(b, a)
	assert.Equal(t, a.String()+":"+b.String(), key)
}

func TestPairKeyDistinctPairsDiffer(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	assert.NotEqual(t, PairKey(a, b), PairKey(a, c))
}
