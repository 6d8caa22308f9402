package main

import (
	"testing"

	"mousebridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	cmd, err := newRootCommand()
	require.NoError(t, err)
	for _, name := range []string{"config", "port", "log-level"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "8000", cmd.Flags().Lookup("port").DefValue)
}

func TestRootCommandBadConfig(t *testing.T) {
	cmd, err := newRootCommand()
	require.NoError(t, err)
	cmd.SetArgs([]string{"--config", t.TempDir() + "/missing.yaml"})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestBindFlags_UnknownFlag(t *testing.T) {
	cmd, err := newRootCommand()
	require.NoError(t, err)

	err = bindFlags(config.NewLoader(), cmd, map[string]string{"server.port": "prot"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--prot")
}
