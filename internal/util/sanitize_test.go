package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeTextStripsControls(t *testing.T) {
	require.Equal(t, "abcd\n\txy", SanitizeText("ab\x00cd\x01\x02\n\txy"))
	require.Equal(t, "", SanitizeText(""))
	require.Equal(t, "plain text", SanitizeText("  plain text \x00"))
}
