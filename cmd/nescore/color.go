package main

import (
	"bytes"
	"io"
)

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[2m"
	ansiCyan  = "\x1b[36m"
)

var tracePrefix = []byte("[CPU_TRACE] ")

// colorWriter highlights the address and mnemonic columns of trace lines.
// Writes are expected to carry whole lines, which is how the CPU emits them.
type colorWriter struct {
	w io.Writer
}

func (c *colorWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(colorize(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func colorize(p []byte) []byte {
	if !bytes.HasPrefix(p, tracePrefix) {
		return p
	}

	rest := p[len(tracePrefix):]
	bar := bytes.IndexByte(rest, '|')
	if bar < 0 {
		return p
	}

	var b bytes.Buffer
	b.WriteString(ansiDim)
	b.Write(tracePrefix)
	b.WriteString(ansiReset)
	b.WriteString(ansiCyan)
	b.Write(rest[:bar])
	b.WriteString(ansiReset)
	b.Write(rest[bar:])
	return b.Bytes()
}
