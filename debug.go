package json4web

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/karagenc/json4web-go/internal/sync"
	"github.com/xiegeo/coloredgoroutine"
)

// Debugger receives trace output from the codec. Attach one via Config
// to watch what the engines do; the default is the silent one.
type Debugger interface {
	Log(main string, v ...any)
	WithContext(context string) Debugger
	WithDynamicContext(context string, dynamicContext func() string) Debugger
}

type noopDebugger struct{}

func NewNoopDebugger() Debugger {
	return noopDebugger{}
}

func (noopDebugger) Log(main string, _v ...any) {}

func (d noopDebugger) WithContext(context string) Debugger { return d }

func (d noopDebugger) WithDynamicContext(context string, _ func() string) Debugger { return d }

// printDebugger writes one line per Log call, every part joined with
// ": ". The dynamic context is re-evaluated on each call, so the
// decoder can report its current byte offset. Output goes through
// coloredgoroutine to keep interleaved goroutines tellable apart, and
// a package mutex keeps lines whole.
type printDebugger struct {
	out            io.Writer
	context        string
	dynamicContext func() string
}

func NewPrintDebugger() Debugger {
	return &printDebugger{out: coloredgoroutine.Colors(os.Stdout)}
}

var printMu sync.Mutex

func (d *printDebugger) Log(main string, _v ...any) {
	parts := make([]string, 0, 3+len(_v))
	if d.context != "" {
		parts = append(parts, d.context)
	}
	if d.dynamicContext != nil {
		if dc := d.dynamicContext(); dc != "" {
			parts = append(parts, dc)
		}
	}
	if main != "" {
		parts = append(parts, main)
	}
	for _, v := range _v {
		parts = append(parts, fmt.Sprint(v))
	}

	printMu.Lock()
	defer printMu.Unlock()
	fmt.Fprintln(d.out, strings.Join(parts, ": "))
}

func (d printDebugger) WithContext(context string) Debugger {
	d.context = context
	return &d
}

func (d printDebugger) WithDynamicContext(context string, dynamicContext func() string) Debugger {
	d.context = context
	d.dynamicContext = dynamicContext
	return &d
}
