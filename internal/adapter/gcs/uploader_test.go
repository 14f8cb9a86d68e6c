package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObject struct {
	buf    bytes.Buffer
	closed bool
	err    error
}

func (m *memObject) Write(p []byte) (int, error) { return m.buf.Write(p) }

func (m *memObject) Close() error {
	m.closed = true
	return m.err
}

func testUploader(objects map[string]*memObject, closeErr error) *Uploader {
	return &Uploader{
		bucket: "wave-products",
		prefix: "gridded/2026",
		newWriter: func(_ context.Context, object string) io.WriteCloser {
			o := &memObject{err: closeErr}
			objects[object] = o
			return o
		},
		logger: slog.Default(),
	}
}

func TestUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AltimeterGridded_SARAL.nc")
	require.NoError(t, os.WriteFile(path, []byte("CDF\x01payload"), 0o644))

	objects := map[string]*memObject{}
	uri, err := testUploader(objects, nil).Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "gs://wave-products/gridded/2026/AltimeterGridded_SARAL.nc", uri)
	obj := objects["gridded/2026/AltimeterGridded_SARAL.nc"]
	require.NotNil(t, obj)
	assert.True(t, obj.closed)
	assert.Equal(t, "CDF\x01payload", obj.buf.String())
}

func TestUpload_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		objects := map[string]*memObject{}
		_, err := testUploader(objects, nil).Upload(context.Background(), filepath.Join(t.TempDir(), "nope.nc"))
		require.Error(t, err)
		assert.Empty(t, objects)
	})

	t.Run("finalize failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.nc")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := testUploader(map[string]*memObject{}, errors.New("403 forbidden")).Upload(context.Background(), path)
		require.ErrorContains(t, err, "finalize gridded/2026/out.nc")
	})
}
