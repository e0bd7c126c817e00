package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/cordialsys/xcall/client/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	require := require.New(t)

	cause := stderrors.New("connection refused")
	err := errors.Submissionf(cause, "could not submit extrinsic %s", "Balances.transfer")
	wrapped := fmt.Errorf("send: %w", err)

	require.Equal(errors.SubmissionError, errors.StatusOf(wrapped))
	require.True(errors.Is(wrapped, errors.SubmissionError))
	require.False(errors.Is(wrapped, errors.EncodingError))
	require.ErrorIs(wrapped, cause)
	require.Contains(err.Error(), "connection refused")
	require.Contains(err.Error(), "Balances.transfer")

	require.Equal(errors.UnknownError, errors.StatusOf(cause))
}

func TestErrorf(t *testing.T) {
	require := require.New(t)
	err := errors.UnknownPalletf("pallet %q not found", "Balance")
	require.Equal(`UnknownPalletError: pallet "Balance" not found`, err.Error())
}
