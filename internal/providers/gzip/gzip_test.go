package gzip

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rave-engine/rave/internal/vfs"
)

func compress(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestTransformerDecompresses(t *testing.T) {
	raw := compress(t, "hello, world")
	src := newDecompressedFile(raw)

	f := &Factory{}
	tr, err := f.New("/x/a.txt.gz", src)
	require.NoError(t, err)
	require.True(t, tr.Valid())
	require.True(t, tr.Consumes())
	require.True(t, tr.Relative())

	ctx := context.Background()
	list, err := tr.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, list)

	handle, err := tr.Open(ctx, "a.txt", vfs.OpenRead)
	require.NoError(t, err)
	out, err := vfs.ReadAll(handle)
	require.NoError(t, err)
	require.Equal(t, "hello, world", string(out))
}

func TestFactoryRejectsNonGzip(t *testing.T) {
	f := &Factory{}
	tr, err := f.New("/x/a.txt.gz", newDecompressedFile([]byte("not gzip")))
	require.NoError(t, err)
	require.False(t, tr.Valid())
}
