package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:9001"
		orig = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name string
		addr string
		orig []string
		err  bool
	}{
		{
			name: "valid config",
			addr: addr,
			orig: orig,
			err:  false,
		},
		{
			name: "no origins",
			addr: addr,
			orig: nil,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			orig: orig,
			err:  true,
		},
		{
			name: "empty origin entry",
			addr: addr,
			orig: []string{""},
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.orig)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
		})
	}
}
