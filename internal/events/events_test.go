package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONSink_EmitsOneObjectPerLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewNDJSONSink(&buf)

	require.NoError(t, sink.Emit(Event{Event: Started, Command: "deploy"}))
	require.NoError(t, sink.Emit(Event{Event: ItemWritten, Command: "deploy", Path: "a.md"}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, Started, first.Event)
	assert.Equal(t, "deploy", first.Command)

	var second Event
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, ItemWritten, second.Event)
	assert.Equal(t, "a.md", second.Path)
}

func TestCollectingSink_RecordsInOrder(t *testing.T) {
	t.Parallel()

	sink := &CollectingSink{}
	require.NoError(t, sink.Emit(Event{Event: Started, Command: "deploy"}))
	require.NoError(t, sink.Emit(Event{Event: Completed, Command: "deploy", Written: 3}))

	require.Len(t, sink.Events, 2)
	assert.Equal(t, Started, sink.Events[0].Event)
	assert.Equal(t, Completed, sink.Events[1].Event)
	assert.Equal(t, 3, sink.Events[1].Written)
}

func TestNopSink_NeverErrors(t *testing.T) {
	t.Parallel()

	var sink NopSink
	assert.NoError(t, sink.Emit(Event{Event: Started}))
}
