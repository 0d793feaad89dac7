package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrateCommand(t *testing.T) {
	cmd, err := parseMigrateCommand("up", nil)
	require.NoError(t, err)
	assert.Equal(t, "up", cmd.action)

	cmd, err = parseMigrateCommand("version", []string{})
	require.NoError(t, err)
	assert.Equal(t, "version", cmd.action)

	cmd, err = parseMigrateCommand("force", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, &migrateCommand{action: "force", version: 1}, cmd)

	_, err = parseMigrateCommand("force", nil)
	assert.Error(t, err)
	_, err = parseMigrateCommand("force", []string{"latest"})
	assert.Error(t, err)
	_, err = parseMigrateCommand("down", []string{"2"})
	assert.Error(t, err)
	_, err = parseMigrateCommand("redo", nil)
	assert.Error(t, err)
}
