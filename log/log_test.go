package log

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

var (
	sampleInt      = 3
	sampleBytes    = []byte("123")
	sampleList     = []int64{10, 0, -10}
	sampleDuration = time.Second
	sampleTime     = time.Unix(12345678, 0)

	errSample = errors.New("some error")
)

func doLogs() {
	Infof("collected %d shares for election %x", sampleInt, sampleBytes)
	Debugw("tally state changed", "election", 1, "state", "collectingShares")
	Errorf("cannot store ballot: %v", errSample)
	Warnw("various types",
		"list", sampleList,
		"duration", sampleDuration,
		"time", sampleTime,
	)
	Errorw(errSample, "reconstruction failed")
}

func TestLevelFiltering(t *testing.T) {
	c := qt.New(t)
	t.Cleanup(func() {
		logTestWriter = io.Discard
		Init(LogLevelError, "stderr", nil)
	})

	var buf bytes.Buffer
	logTestWriter = &buf
	Init(LogLevelWarn, logTestWriterName, nil)
	c.Assert(Level(), qt.Equals, LogLevelWarn)

	Infow("hidden message")
	Warnw("visible message", "shares", 2)
	out := buf.String()
	c.Assert(strings.Contains(out, "hidden message"), qt.IsFalse)
	c.Assert(strings.Contains(out, "visible message"), qt.IsTrue)
	c.Assert(strings.Contains(out, "shares"), qt.IsTrue)
}

func TestErrorOutput(t *testing.T) {
	c := qt.New(t)
	t.Cleanup(func() {
		logTestWriter = io.Discard
		Init(LogLevelError, "stderr", nil)
	})

	var errBuf bytes.Buffer
	logTestWriter = io.Discard
	Init(LogLevelDebug, logTestWriterName, &errBuf)
	Infow("informational")
	Errorw(errSample, "something broke")
	c.Assert(strings.Contains(errBuf.String(), "informational"), qt.IsFalse)
	c.Assert(strings.Contains(errBuf.String(), "something broke"), qt.IsTrue)
}

func TestCheckInvalidChars(t *testing.T) {
	t.Cleanup(func() { panicOnInvalidChars = false })

	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}
	panicOnInvalidChars = false
	Init("debug", "stderr", nil)
	Debugf("%s", v)
	// should not panic since env var is false. if it panics, test will fail

	// now enable panic and try again: should recover() and never reach t.Errorf()
	panicOnInvalidChars = true
	Init("debug", "stderr", nil)
	defer func() { recover() }()
	Debugf("%s", v)
	t.Errorf("Debugf(%s) should have panicked because of invalid char", v)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard // to not grow a buffer
	Init("debug", logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
