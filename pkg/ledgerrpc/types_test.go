package ledgerrpc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunex-network/tunex-client/internal/core/ports"
)

func TestRPCErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       *RPCError
		transient bool
		revert    bool
	}{
		{
			name:      "rate limited",
			err:       &RPCError{Code: CodeRateLimited, Message: "too many requests"},
			transient: true,
		},
		{
			name:      "server busy",
			err:       &RPCError{Code: CodeServerBusy, Message: "resource exhausted"},
			transient: true,
		},
		{
			name:   "revert by code",
			err:    &RPCError{Code: CodeRevert, Message: "execution reverted: Already purchased"},
			revert: true,
		},
		{
			name:   "revert by message prefix",
			err:    &RPCError{Code: -32000, Message: "execution reverted: Incorrect value sent"},
			revert: true,
		},
		{
			name: "plain failure",
			err:  &RPCError{Code: -32601, Message: "method not found"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.transient, tt.err.Transient())
			require.Equal(t, tt.revert, tt.err.IsRevert())
		})
	}
}

func TestRevertReasonIsVerbatim(t *testing.T) {
	t.Parallel()

	err := &RPCError{Code: CodeRevert, Message: "execution reverted: Incorrect value sent"}
	require.Equal(t, "Incorrect value sent", err.RevertReason())

	bare := &RPCError{Code: CodeRevert, Message: "execution reverted"}
	require.Equal(t, "", bare.RevertReason())
}

func TestHTTPErrorClassification(t *testing.T) {
	t.Parallel()

	require.True(t, (&HTTPError{Status: 429}).Transient())
	require.True(t, (&HTTPError{Status: 500}).Transient())
	require.True(t, (&HTTPError{Status: 503}).Transient())
	require.False(t, (&HTTPError{Status: 400}).Transient())
	require.False(t, (&HTTPError{Status: 404}).Transient())
}

func TestTransportErrorIsAlwaysTransient(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &TransportError{cause: cause}
	require.True(t, err.Transient())
	require.ErrorIs(t, err, cause)
}

func TestErrorsSatisfyTransientPort(t *testing.T) {
	t.Parallel()

	var transient ports.TransientError
	require.True(t, errors.As(&RPCError{Code: CodeRateLimited}, &transient))
	require.True(t, errors.As(&HTTPError{Status: 503}, &transient))
	require.True(t, errors.As(&TransportError{cause: errors.New("eof")}, &transient))
}
