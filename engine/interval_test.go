package engine

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type IntervalSuite struct{}

func TestInterval(t *testing.T) {
	suite.RunTests(t, &IntervalSuite{})
}

func (IntervalSuite) TestFindDisjointExtents(t *testing.T) {
	idx := NewIntervalIndex([]extent{
		{Start: 0, End: 64, Index: 0},
		{Start: 64, End: 120, Index: 1},
		{Start: 200, End: 400, Index: 2},
	})

	i, ok := idx.Find(0)
	expect.True(t, ok)
	expect.Equal(t, 0, i)

	i, ok = idx.Find(63)
	expect.True(t, ok)
	expect.Equal(t, 0, i)

	i, ok = idx.Find(64)
	expect.True(t, ok)
	expect.Equal(t, 1, i)

	i, ok = idx.Find(300)
	expect.True(t, ok)
	expect.Equal(t, 2, i)

	_, ok = idx.Find(150)
	expect.False(t, ok)

	_, ok = idx.Find(500)
	expect.False(t, ok)
}

func (IntervalSuite) TestFindOverlappingExtentsPrefersEarliestStart(t *testing.T) {
	idx := NewIntervalIndex([]extent{
		{Start: 0, End: 1000, Index: 0}, // encloses the file header region
		{Start: 120, End: 400, Index: 1},
	})

	i, ok := idx.Find(200)
	expect.True(t, ok)
	expect.Equal(t, 0, i)
}

func (IntervalSuite) TestFindUnsortedInput(t *testing.T) {
	idx := NewIntervalIndex([]extent{
		{Start: 500, End: 600, Index: 2},
		{Start: 0, End: 100, Index: 0},
		{Start: 100, End: 500, Index: 1},
	})

	i, ok := idx.Find(550)
	expect.True(t, ok)
	expect.Equal(t, 2, i)
}
