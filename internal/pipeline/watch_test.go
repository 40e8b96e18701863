package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/svdoc/internal/config"
)

func TestGenerator_Relevant(t *testing.T) {
	g, _ := testGenerator(t, nil)
	assert.True(t, g.relevant("/src/alu.sv"))
	assert.True(t, g.relevant("/src/inc/defs.SVH"))
	assert.True(t, g.relevant("/src/newdir"))
	assert.False(t, g.relevant("/src/alu.sv.swp"))
	assert.False(t, g.relevant("/src/notes.md"))
}

func TestGenerator_WatchRegenerates(t *testing.T) {
	g, cfg := testGenerator(t, func(c *config.Config) { c.HTML = false })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan *Run, 4)
	done := make(chan error, 1)
	go func() {
		done <- g.Watch(ctx, func(r *Run, err error) {
			if err == nil {
				runs <- r
			}
		})
	}()

	// Give the watcher time to register the source directory.
	time.Sleep(200 * time.Millisecond)
	writeSource(t, cfg.SrcDir, "late.sv", "/** @brief Late */\nmodule late; endmodule\n")

	select {
	case r := <-runs:
		assert.Equal(t, 1, r.Snapshot().Progress.Definitions)
	case <-time.After(10 * time.Second):
		t.Fatal("no run triggered by file change")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
