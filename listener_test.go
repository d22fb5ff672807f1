package cio_test

import (
	"context"
	"testing"
	"time"

	"github.com/brimscale/cio"
)

func TestListenAndDial(t *testing.T) {
	if err := cio.Startup(); err != nil {
		t.Skip("startup:", err)
	}
	defer func() {
		_ = cio.Shutdown()
	}()

	ln, lnErr := cio.Listen(context.Background(), "tcp", "127.0.0.1:0", cio.WithParallelAcceptors(1))
	if lnErr != nil {
		t.Fatal("listen:", lnErr)
	}
	defer func() {
		_ = ln.Close()
	}()

	served := make(chan error, 8)
	ln.Accept().OnComplete(func(ctx context.Context, conn *cio.Conn, err error) {
		if err != nil {
			if !cio.IsClosed(err) {
				served <- err
			}
			return
		}
		b := make([]byte, 5)
		read := 0
		for read < len(b) {
			n, rErr := conn.Read(b[read:])
			if rErr != nil {
				served <- rErr
				return
			}
			read += n
		}
		if _, wErr := conn.WriteAll(b); wErr != nil {
			served <- wErr
			return
		}
		_ = conn.Close()
		served <- nil
	})

	conn, dialErr := cio.DialSync(context.Background(), "tcp", ln.Addr().String())
	if dialErr != nil {
		t.Fatal("dial:", dialErr)
	}
	if _, wErr := conn.WriteAll([]byte("hello")); wErr != nil {
		t.Fatal("write:", wErr)
	}
	echo := make([]byte, 5)
	read := 0
	for read < len(echo) {
		n, rErr := conn.Read(echo[read:])
		if rErr != nil {
			t.Fatal("read:", rErr)
		}
		read += n
	}
	if string(echo) != "hello" {
		t.Fatal("echo:", string(echo))
	}
	_ = conn.Close()

	select {
	case err := <-served:
		if err != nil {
			t.Fatal("serve:", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve timed out")
	}
}

func TestListenNetworkUnmatched(t *testing.T) {
	if _, err := cio.Listen(context.Background(), "udp", "127.0.0.1:0"); !cio.IsNetworkUnmatched(err) {
		t.Fatal("err:", err)
	}
}

func TestDialNetworkUnmatched(t *testing.T) {
	_, err := cio.DialSync(context.Background(), "udp", "127.0.0.1:9000")
	if !cio.IsNetworkUnmatched(err) {
		t.Fatal("err:", err)
	}
}
