package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("01-02-2018")
	require.NoError(t, err)
	require.Equal(t, time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2018-02-01")
	require.Error(t, err)
	_, err = ParseDate("31-31-2018")
	require.Error(t, err)
	_, err = ParseDate("")
	require.Error(t, err)
}

func TestResponseEnvelope(t *testing.T) {
	ok := Success("pong")
	require.Equal(t, "success", ok.Status)
	require.Equal(t, "pong", ok.Data)
	require.Empty(t, ok.Err)

	bad := Failed("boom")
	require.Equal(t, "failed", bad.Status)
	require.Nil(t, bad.Data)
	require.Equal(t, "boom", bad.Err)
}
