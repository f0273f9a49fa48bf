package timestamp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "2025.01.26 16:34", Format(1737909240))
	require.Equal(t, "1970.01.01 00:00", Format(0))
	require.Equal(t, "2000.02.29 23:59", Format(951868799))
}

func TestFormatSeconds(t *testing.T) {
	require.Equal(t, "2025.01.26 16:34:00", FormatSeconds(1737909240))
	require.Equal(t, "2000.02.29 23:59:59", FormatSeconds(951868799))
}

func TestParseRoundTrip(t *testing.T) {
	sec, ok := Parse(Format(1737909240))
	require.True(t, ok)
	require.Equal(t, int64(1737909240), sec)

	sec, ok = Parse(FormatSeconds(951868799))
	require.True(t, ok)
	require.Equal(t, int64(951868799), sec)

	_, ok = Parse("2025-01-26T16:34:00Z")
	require.False(t, ok)
	_, ok = Parse("")
	require.False(t, ok)
}
