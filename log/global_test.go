package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	old := GetLogger()
	SetLogger(NewStdLogger(buf))
	t.Cleanup(func() {
		SetLogger(old)
		SetLevel(LevelDebug)
	})
	return buf
}

func TestSetLevel(t *testing.T) {
	buf := withBuffer(t)

	SetLevel(LevelWarn)
	Debug("dropped")
	Info("dropped")
	Warn("kept")
	Errorw("socket", 1, "code", -104)

	assert.Equal(t, "WARN msg=kept\nERROR socket=1 code=-104\n", buf.String())

	buf.Reset()
	SetLevel(LevelDebug)
	Debugf("socket %d created", 2)
	assert.Equal(t, "DEBUG msg=socket 2 created\n", buf.String())
}

func TestFilterLevel(t *testing.T) {
	buf := withBuffer(t)

	SetLevel(LevelDebug)
	FilterLevel(LevelInfo, Level(42))
	Info("dropped")
	Infof("dropped %s", "too")
	Warnf("state %s", "Idle")

	assert.Equal(t, "WARN msg=state Idle\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: " warning ", want: LevelWarn},
		{in: "Error", want: LevelError},
		{in: "fatal", want: LevelFatal},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
