package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condomanager/internal/logger"
)

func init() {
	logger.Init("test")
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return rootCmd.Execute()
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"seed"},
		{"create-admin"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.NotNil(t, cmd.RunE, path)
	}
}

func TestMigrateDown_RejectsBadStepCount(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-2"} {
		err := execute(t, "migrate", "down", "--", arg)
		require.Error(t, err, arg)
		assert.Contains(t, err.Error(), "invalid step count")
	}
}

func TestMigrateDown_RejectsExtraArgs(t *testing.T) {
	err := execute(t, "migrate", "down", "1", "2")
	require.Error(t, err)
}

func TestCreateAdmin_RequiresEmailAndPassword(t *testing.T) {
	err := execute(t, "create-admin", "--first-name", "Mario")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}
