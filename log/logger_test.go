// Copyright 2024 The starkbind Authors
// This file is part of the starkbind library.
//
// The starkbind library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The starkbind library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the starkbind library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func BenchmarkTraceLogging(b *testing.B) {
	logger := New()
	logger.SetHandler(LvlFilterHandler(LvlInfo, StreamHandler(os.Stderr, TerminalFormat(true))))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Trace("a message", "v", i)
	}
}

type notimeHandler struct {
	next Handler
}

func (n notimeHandler) Log(r *Record) error {
	r.Time = time.Unix(0, 0).UTC()
	return n.next.Log(r)
}

func TestLoggingNoTrace(t *testing.T) {
	out := new(bytes.Buffer)
	logger := New()
	logger.SetHandler(notimeHandler{LvlFilterHandler(LvlTrace, StreamHandler(out, TerminalFormat(false)))})

	logger.Trace("a message", "foo", "bar")
	have := out.String()
	want := "TRACE[01-01|00:00:00.000] a message " + strings.Repeat(" ", termMsgJust-len("a message")) + "foo=bar\n"
	if have != want {
		t.Errorf("\nhave: '%v'\nwant: '%v'\n", have, want)
	}
}

func TestLoggingWithOrigins(t *testing.T) {
	PrintOrigins(true)
	defer PrintOrigins(false)

	out := new(bytes.Buffer)
	logger := New()
	logger.SetHandler(notimeHandler{StreamHandler(out, TerminalFormat(false))})

	logger.Info("a message", "foo", "bar")
	have := out.String()
	if !strings.HasPrefix(have, "INFO [01-01|00:00:00.000|log/logger_test.go:") {
		t.Errorf("missing location prefix: '%v'", have)
	}
}

func TestLvlFilter(t *testing.T) {
	out := new(bytes.Buffer)
	logger := New()
	logger.SetHandler(LvlFilterHandler(LvlWarn, StreamHandler(out, LogfmtFormat())))

	logger.Info("dropped")
	logger.Debug("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	if have := strings.Count(out.String(), "msg=kept"); have != 2 {
		t.Errorf("want 2 records, have %d: %s", have, out.String())
	}
	if strings.Contains(out.String(), "dropped") {
		t.Errorf("filtered records written: %s", out.String())
	}
}

func TestChildFollowsParentHandler(t *testing.T) {
	var (
		parent = New("component", "abigen")
		child  = parent.New("contract", "Token")
		out    = new(bytes.Buffer)
	)
	// Swapping after the child was created must still reach it.
	parent.SetHandler(notimeHandler{StreamHandler(out, LogfmtFormat())})
	child.Info("hello world", "err", errors.New("boom"))

	want := `t=1970-01-01T00:00:00+0000 lvl=info msg="hello world" component=abigen contract=Token err=boom` + "\n"
	if have := out.String(); have != want {
		t.Errorf("\nhave: '%v'\nwant: '%v'\n", have, want)
	}
}

func TestOddContext(t *testing.T) {
	out := new(bytes.Buffer)
	logger := New()
	logger.SetHandler(StreamHandler(out, LogfmtFormat()))
	logger.Info("odd", "key")

	if !strings.Contains(out.String(), errorKey+"=") {
		t.Errorf("odd context not normalized: %s", out.String())
	}
}

func TestLvlFromString(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "crit"} {
		lvl, err := LvlFromString(name)
		if err != nil {
			t.Fatalf("level %q: %v", name, err)
		}
		if back, _ := LvlFromString(lvl.String()); back != lvl {
			t.Errorf("level %q does not round trip through %q", name, lvl.String())
		}
	}
	if _, err := LvlFromString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestMultiHandler(t *testing.T) {
	var (
		first, second = new(bytes.Buffer), new(bytes.Buffer)
		failure       = errors.New("disk full")
	)
	failing := FuncHandler(func(r *Record) error { return failure })
	h := MultiHandler(StreamHandler(first, LogfmtFormat()), failing, StreamHandler(second, LogfmtFormat()))

	logger := New()
	logger.SetHandler(h)
	logger.Info("a message", "foo", "bar")
	if !strings.Contains(first.String(), "foo=bar") || first.String() != second.String() {
		t.Errorf("handlers got different output: %q vs %q", first.String(), second.String())
	}
	if err := h.Log(&Record{Msg: "direct", Lvl: LvlInfo}); !errors.Is(err, failure) {
		t.Errorf("handler error not reported, have %v", err)
	}
}
