package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pattern = `^snowflake-backend-([0-9]+)$`

func TestHostnameOrdinal(t *testing.T) {
	i, err := HostnameOrdinal("snowflake-backend-12", pattern)
	require.NoError(t, err)
	assert.Equal(t, int64(12), i)

	i, err = HostnameOrdinal("snowflake-backend-0", pattern)
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)
}

func TestHostnameOrdinal_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		host    string
		pattern string
	}{
		{name: "no match", host: "laptop", pattern: pattern},
		{name: "no capture group", host: "snowflake-backend-1", pattern: `^snowflake-backend-[0-9]+$`},
		{name: "capture not a number", host: "snowflake-backend-x", pattern: `^snowflake-backend-(.+)$`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := HostnameOrdinal(tc.host, tc.pattern)
			assert.ErrorIs(t, err, ErrNoOrdinal)
		})
	}

	_, err := HostnameOrdinal("snowflake-backend-1", `([`)
	assert.Error(t, err)
}
