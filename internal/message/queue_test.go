package message

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueue_Missing(t *testing.T) {
	q, err := ReadQueue(filepath.Join(t.TempDir(), "queue.txt"))
	require.NoError(t, err)
	assert.Empty(t, q.Lines)
	require.NoError(t, q.Consume())
}

func TestQueue_ConsumeKeepsRequeued(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.txt")
	require.NoError(t, os.WriteFile(path, []byte(receivedMsg+"\n\n"+sentMsg+"\n"), 0o644))

	q, err := ReadQueue(path)
	require.NoError(t, err)
	assert.Equal(t, []string{receivedMsg, sentMsg}, q.Lines)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(sentMsg + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, q.Consume())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sentMsg+"\n", string(data))
	assert.NoFileExists(t, path+".tmp")
}

func TestQueue_ConsumeRemovesEmptied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.txt")
	require.NoError(t, os.WriteFile(path, []byte(receivedMsg+"\n"), 0o644))

	q, err := ReadQueue(path)
	require.NoError(t, err)
	require.NoError(t, q.Consume())

	assert.NoFileExists(t, path)
}

func TestQueue_ConsumeShrunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.txt")
	require.NoError(t, os.WriteFile(path, []byte(receivedMsg+"\n"), 0o644))

	q, err := ReadQueue(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.ErrorContains(t, q.Consume(), "shrank")
}
