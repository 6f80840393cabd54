package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startCall struct {
	name string
	args []string
}

func recordingOpener(command string, args []string) (*Opener, *[]startCall) {
	var calls []startCall
	o := NewOpener(command, args, NullLogger())
	o.start = func(name string, args ...string) error {
		calls = append(calls, startCall{name: name, args: args})
		return nil
	}
	return o, &calls
}

func TestOpener_ConfiguredViewer(t *testing.T) {
	o, calls := recordingOpener("feh", []string{"--scale-down"})

	require.NoError(t, o.Open("https://x/1.jpg"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "feh", (*calls)[0].name)
	assert.Equal(t, []string{"--scale-down", "https://x/1.jpg"}, (*calls)[0].args)
}

func TestOpener_ConfiguredArgsNotMutated(t *testing.T) {
	args := make([]string, 1, 4)
	args[0] = "-f"
	o, _ := recordingOpener("viewer", args)

	require.NoError(t, o.Open("https://x/1.jpg"))
	require.NoError(t, o.Open("https://x/2.jpg"))
	assert.Equal(t, []string{"-f"}, o.args)
}

func TestOpener_EmptyURL(t *testing.T) {
	o, calls := recordingOpener("", nil)
	assert.Error(t, o.Open(""))
	assert.Empty(t, *calls)
}

func TestDefaultOpenCommand(t *testing.T) {
	name, args := defaultOpenCommand("darwin", "u")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"u"}, args)

	name, args = defaultOpenCommand("windows", "u")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", "u"}, args)

	name, args = defaultOpenCommand("linux", "u")
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"u"}, args)
}
