package policy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warden-dev/policy-sdk-go/wireformat"
)

func capabilitiesReply(t *testing.T, v any) []byte {
	t.Helper()
	out, err := wireformat.Encode(v)
	require.NoError(t, err)
	return out
}
