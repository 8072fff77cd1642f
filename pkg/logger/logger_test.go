package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Level
	}{
		{"debug lowercase", "debug", LevelDebug},
		{"warn uppercase", "WARN", LevelWarn},
		{"warning alias", "warning", LevelWarn},
		{"error padded", "  error ", LevelError},
		{"fatal", "fatal", LevelFatal},
		{"empty falls back to info", "", LevelInfo},
		{"unknown falls back to info", "verbose", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestMinimumLevelFiltersEntries(t *testing.T) {
	log := New("test", "dev")
	log.DisableConsoleOutput()
	log.SetLevel(LevelWarn)
	ch := log.Subscribe()

	log.Debugf("debug %d", 1)
	log.Infof("info %d", 2)
	log.Warn("warn 3")
	log.Errorf("error %d", 4)

	var got []LogEntry
	for {
		select {
		case entry := <-ch:
			got = append(got, entry)
			continue
		default:
		}
		break
	}

	require.Len(t, got, 2)
	assert.Equal(t, "WARN", got[0].Level)
	assert.Equal(t, "warn 3", got[0].Message)
	assert.Equal(t, "ERROR", got[1].Level)
	assert.Equal(t, "error 4", got[1].Message)
}

func TestSubscribeReceivesFormattedEntries(t *testing.T) {
	log := New("test", "dev")
	log.DisableConsoleOutput()
	ch := log.Subscribe()

	log.Infof("connected to %s in %dms", "memory", 12)

	entry := <-ch
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "connected to memory in 12ms", entry.Message)
	assert.False(t, entry.Time.IsZero())
}

func TestFullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	log := New("test", "dev")
	log.DisableConsoleOutput()
	ch := log.Subscribe()

	// Nobody drains the channel; once the buffer fills, further
	// entries must be dropped rather than stall the caller.
	for i := 0; i < 150; i++ {
		log.Infof("entry %d", i)
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 100, drained)
}
