package pagination

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	require.Equal(t, Params{Page: 1, Limit: MaxLimit}, Params{Page: -3, Limit: 1000}.Normalize())
	require.Equal(t, Params{Page: 4, Limit: 10}, Params{Page: 4, Limit: 10}.Normalize())
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Params{Page: 1, Limit: 20}.Offset())
	require.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
	require.Equal(t, 0, Params{Page: 0, Limit: 20}.Offset())
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
}

func TestOffsetProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("offset is (page-1)*limit for in-range params", prop.ForAll(
		func(page, limit int) bool {
			return Params{Page: page, Limit: limit}.Offset() == (page-1)*limit
		},
		gen.IntRange(1, 10_000),
		gen.IntRange(1, MaxLimit),
	))
	properties.TestingRun(t)
}
