package r1csmock

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrime() *big.Int {
	p, ok := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	if !ok {
		panic("bad test prime")
	}
	return p
}

func TestAddRecordsGate(t *testing.T) {
	b := New(testPrime())
	a, err := b.AllocateNumber("2")
	require.NoError(t, err)
	c, err := b.AllocateNumber("3")
	require.NoError(t, err)

	sum, err := b.Add(a, c, 8, false)
	require.NoError(t, err)

	w, ok := sum.(*wire)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(5), w.value)
	assert.Equal(t, "add", b.Gates[len(b.Gates)-1].Op)
}

func TestMultiplyOverflowRejected(t *testing.T) {
	b := New(testPrime())
	a, err := b.AllocateNumber("200")
	require.NoError(t, err)
	c, err := b.AllocateNumber("200")
	require.NoError(t, err)

	_, err = b.Multiply(a, c, 8, false)
	assert.Error(t, err)
}

func TestEqualsAndRequire(t *testing.T) {
	b := New(testPrime())
	a, err := b.AllocateNumber("7")
	require.NoError(t, err)
	c, err := b.AllocateNumber("7")
	require.NoError(t, err)

	eq, err := b.Equals(a, c)
	require.NoError(t, err)
	require.NoError(t, b.Require(eq, "a == c"))

	neq, err := b.NotEquals(a, c)
	require.NoError(t, err)
	assert.Error(t, b.Require(neq, "a != c should fail"))
}

func TestConditionalSelectsCorrectBranch(t *testing.T) {
	b := New(testPrime())
	a, err := b.AllocateNumber("10")
	require.NoError(t, err)
	c, err := b.AllocateNumber("20")
	require.NoError(t, err)
	trueBit, err := b.AllocateBoolean(true)
	require.NoError(t, err)

	selected, err := b.Conditional(a, c, trueBit)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), selected.(*wire).value)
}

func TestDivideSynthesizesQuotientAndRemainder(t *testing.T) {
	b := New(testPrime())
	nom, err := b.AllocateNumber("17")
	require.NoError(t, err)
	denom, err := b.AllocateNumber("5")
	require.NoError(t, err)

	q, r, err := b.Divide(nom, denom, 8)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), q.(*wire).value)
	assert.Equal(t, big.NewInt(2), r.(*wire).value)
}

func TestDivideByZeroRejected(t *testing.T) {
	b := New(testPrime())
	nom, err := b.AllocateNumber("17")
	require.NoError(t, err)
	zero, err := b.AllocateNumber("0")
	require.NoError(t, err)

	_, _, err = b.Divide(nom, zero, 8)
	assert.Error(t, err)
}
