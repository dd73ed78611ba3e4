package cmd

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emove/connector/transport/echo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	// never read the user's real config
	args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "connector version "+connectorVersion)
	assert.Contains(t, out, "unit16-payload-codec")
}

func TestSend_DryRun(t *testing.T) {
	out, err := execute(t, "--dry-run", "send", "10.0.0.5:9000", "hi", "there", "--wait", "200ms")
	require.NoError(t, err)

	assert.Contains(t, out, "* Connecting...")
	assert.Contains(t, out, "* Connected")
	assert.Contains(t, out, "> hi")
	assert.Contains(t, out, "> there")
	assert.Contains(t, out, "< hi")
	assert.Contains(t, out, "< there")
	assert.Contains(t, out, "* Not connected")
}

func TestSend_AddressFlag(t *testing.T) {
	out, err := execute(t, "--dry-run", "--address", "localhost:1", "--unit-width", "8", "send", "ok", "--wait", "100ms")
	require.NoError(t, err)
	assert.Contains(t, out, "< ok")
}

func TestSend_InvalidAddress(t *testing.T) {
	_, err := execute(t, "--dry-run", "send", "badaddress", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "You must provide port number.")
}

func TestSend_MissingText(t *testing.T) {
	_, err := execute(t, "--dry-run", "send", "localhost:1")
	assert.Error(t, err)
}

func TestSend_InvalidUnitWidth(t *testing.T) {
	_, err := execute(t, "--dry-run", "--unit-width", "32", "send", "localhost:1", "hi")
	assert.Error(t, err)
}

func TestSend_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: \"127.0.0.1:7\"\nlog:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "--dry-run", "send", "from-config", "--wait", "100ms"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "< from-config")
}

func TestSend_TCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		_, _ = conn.Write(buf)
		// hold the connection until the client disconnects
		_, _ = conn.Read(buf)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	out, err := execute(t, "send", "127.0.0.1:"+strconv.Itoa(port), "hi", "--wait", "500ms")
	require.NoError(t, err)
	assert.Contains(t, out, "* Connected")
	assert.Contains(t, out, "< hi")
}

func TestSend_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out, err := execute(t, "send", addr, "hi")
	require.Error(t, err)
	assert.Contains(t, out, "Unable connect to remote address")
}

func TestTransport_DryRunUsesEcho(t *testing.T) {
	tr := (&app{dryRun: true}).transport()
	et, ok := tr.(*echo.Transport)
	require.True(t, ok, "got %T", tr)
	et.Stop()
}
