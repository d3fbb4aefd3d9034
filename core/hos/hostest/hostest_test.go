package hostest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeakCheckAcceptsClosedDescriptors(t *testing.T) {
	fake := New(t)

	r, w, err := fake.Pipe()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, r.Close())

	assert.Empty(t, fake.leakedDescriptors())
}

func TestLeakCheckReportsOpenDescriptors(t *testing.T) {
	fake := New(t)

	r, w, err := fake.Pipe()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"pipe[1] read end"}, fake.leakedDescriptors())

	require.NoError(t, r.Close())
	assert.Empty(t, fake.leakedDescriptors())
}

func TestLeakCheckCoversRedirectionFiles(t *testing.T) {
	fake := New(t)

	name := filepath.Join(t.TempDir(), "out.txt")
	file, err := fake.OpenWrite(name)
	require.NoError(t, err)

	assert.Equal(t, []string{name}, fake.leakedDescriptors())

	require.NoError(t, file.Close())
	assert.Empty(t, fake.leakedDescriptors())
}
