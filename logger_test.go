package taskq

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel(" warn "))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestFmtLogger_NoPanic(t *testing.T) {
	for _, l := range []Logger{NewFmtLogger(), NewFmtLoggerLevel(LevelError), noopLogger{}} {
		l.Debugf("d %d", 1)
		l.Infof("i %s", "x")
		l.Warnf("w")
		l.Errorf("e %v", nil)
	}
}

func TestFmtLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := FmtLogger{Min: LevelWarn, Out: &buf}
	l.Debugf("hidden")
	l.Infof("hidden")
	l.Warnf("careful %d", 1)
	l.Errorf("broken")
	require.Equal(t, "[WARN]  careful 1\n[ERROR] broken\n", buf.String())
}
