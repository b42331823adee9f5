package lang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForLocale(t *testing.T) {
	tests := []struct {
		tag  string
		want Lang
		ok   bool
	}{
		{"en", EnUS, true},
		{"en-GB", EnUS, true},
		{"zh-CN", ZhCN, true},
		{"zh-Hans", ZhCN, true},
		{"", Lang{}, false},
		{"!!", Lang{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := ForLocale(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeOnlyAppliesSetFields(t *testing.T) {
	got := EnUS.Merge(Lang{OperationOkTitle: "Copy"})
	assert.Equal(t, "Copy", got.OperationOkTitle)
	assert.Equal(t, EnUS.OperationCancelTitle, got.OperationCancelTitle)
}

func TestResolveWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lang.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operation_save_title: Export\n"), 0o600))

	got, err := Resolve("en-US", path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Export", got.OperationSaveTitle)
	assert.Equal(t, "OK", got.OperationOkTitle)
}

func TestResolveNothingConfigured(t *testing.T) {
	got, err := Resolve("", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
