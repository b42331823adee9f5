package filesave

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero padded", time.Date(2024, 1, 2, 3, 4, 5, 6*int(time.Millisecond), time.UTC), "20240102030405006.png"},
		{"sub-millisecond truncated", time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC), "20241231235959999.png"},
		{"whole second", time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC), "20300615120000000.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.at))
		})
	}
}

func TestFilenameUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "20240102040000000.png", Filename(at))
}

func TestWriteVerbatim(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}

	require.NoError(t, Write(fs, "/shots/nested/a.png", data))

	got, err := afero.ReadFile(fs, "/shots/nested/a.png")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriteReadOnlyFails(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, Write(fs, "/a.png", []byte("x")))
}

func TestPrompterFunc(t *testing.T) {
	var gotDefault string
	p := PrompterFunc(func(ctx context.Context, defaultPath string) (string, bool, error) {
		gotDefault = defaultPath
		return "/tmp/out.png", true, nil
	})
	path, ok, err := p.PromptSavePath(context.Background(), "x.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/out.png", path)
	assert.Equal(t, "x.png", gotDefault)
}
