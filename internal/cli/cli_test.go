package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"provision", "nearest", "rank", "tide", "evaluate", "watch", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		flag string
	}{
		{nearestCmd, "lat"},
		{nearestCmd, "lon"},
		{rankCmd, "lat"},
		{tideCmd, "station"},
		{evaluateCmd, "spots"},
		{watchCmd, "spots"},
	}
	for _, tt := range tests {
		f := tt.cmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "%s --%s", tt.cmd.Name(), tt.flag)
		assert.Equal(t, []string{"true"}, f.Annotations[cobra.BashCompOneRequiredFlag], "%s --%s", tt.cmd.Name(), tt.flag)
	}
}

func TestRankRequiresBothExposureBounds(t *testing.T) {
	require.NoError(t, rankCmd.Flags().Set("exposure-start", "10"))
	t.Cleanup(func() {
		rankCmd.Flags().Lookup("exposure-start").Changed = false
		rankExposureStart = 0
	})

	err := rankCmd.RunE(rankCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "together")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "version: dev")
	assert.Nil(t, appHandle)
}
