// Package trace implements a diagnostic-line facility: lines of shape
//
//	PREFIX[ TIMESTAMP ][ (SECTION) ][ [THREAD] ][ {FILE,LINE,FUNC} ] MSG SUFFIX
//
// configurable at build and runtime via a Level (NONE/BRIEF/INFO/VERBOSE/MAX)
// and per-subsection enablement (with a '*' suffix wildcard). This mirrors
// the chainable-builder shape of github.com/joeycumines/logiface (Logger,
// Level, chained field setters) cut down to a single concrete event type
// and backed by github.com/rs/zerolog for the actual write path, a real
// third-party sink instead of the standard library's log.Logger.
package trace

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level models the runtime diagnostic verbosity level.
type Level int32

const (
	// LevelNone disables all trace output.
	LevelNone Level = iota
	// LevelBrief emits only PREFIX, TIMESTAMP, MSG, and SUFFIX.
	LevelBrief
	// LevelInfo adds the SECTION field.
	LevelInfo
	// LevelVerbose adds the THREAD field.
	LevelVerbose
	// LevelMax adds the FILE/LINE/FUNC field.
	LevelMax
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelBrief:
		return "BRIEF"
	case LevelInfo:
		return "INFO"
	case LevelVerbose:
		return "VERBOSE"
	case LevelMax:
		return "MAX"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

var globalLevel atomic.Int32

// SetLevel sets the process-wide runtime info level. Defaults to LevelNone.
func SetLevel(l Level) { globalLevel.Store(int32(l)) }

// GetLevel returns the process-wide runtime info level.
func GetLevel() Level { return Level(globalLevel.Load()) }

// sectionRegistry tracks enabled subsections by name, with '*' suffix
// wildcard matching.
type sectionRegistry struct {
	mu       sync.RWMutex
	enabled  map[string]bool
	wildcard []string
}

var sections = &sectionRegistry{enabled: make(map[string]bool)}

// EnableSection turns on tracing for the named subsection. A trailing '*'
// matches any section whose prefix (up to the '*') is equal.
func EnableSection(name string) {
	sections.mu.Lock()
	defer sections.mu.Unlock()
	if strings.HasSuffix(name, "*") {
		sections.wildcard = append(sections.wildcard, strings.TrimSuffix(name, "*"))
		return
	}
	sections.enabled[name] = true
}

// SectionEnabled reports whether name is enabled, either exactly or via a
// registered wildcard prefix.
func SectionEnabled(name string) bool {
	sections.mu.RLock()
	defer sections.mu.RUnlock()
	if sections.enabled[name] {
		return true
	}
	for _, prefix := range sections.wildcard {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Writer is the concrete sink for formatted trace lines. The default
// Writer wraps zerolog.
type Writer interface {
	Write(line Line)
}

// Line is one fully-populated diagnostic line, prior to formatting.
type Line struct {
	Prefix    string
	Timestamp time.Time
	Section   string
	Thread    string
	File      string
	Line      int
	Func      string
	Msg       string
	Suffix    string
}

var (
	writerMu sync.RWMutex
	writer   Writer = newZerologWriter(os.Stderr)
)

// SetWriter installs a custom Writer, returning the previous one.
func SetWriter(w Writer) (previous Writer) {
	writerMu.Lock()
	defer writerMu.Unlock()
	previous = writer
	writer = w
	return previous
}

func currentWriter() Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// zerologWriter adapts Line to zerolog's structured event API, then
// renders it in the PREFIX[...]... shape via zerolog's console formatter.
type zerologWriter struct {
	logger zerolog.Logger
}

func newZerologWriter(out *os.File) *zerologWriter {
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano, NoColor: true}
	cw.FormatTimestamp = func(i any) string {
		return fmt.Sprintf("[%v]", i)
	}
	cw.FormatFieldName = func(i any) string { return fmt.Sprintf("%s=", i) }
	return &zerologWriter{logger: zerolog.New(cw)}
}

func (z *zerologWriter) Write(l Line) {
	ev := z.logger.Log()
	var b strings.Builder
	b.WriteString(l.Prefix)
	if l.Section != "" {
		b.WriteString("(")
		b.WriteString(l.Section)
		b.WriteString(")")
	}
	if l.Thread != "" {
		b.WriteString("[")
		b.WriteString(l.Thread)
		b.WriteString("]")
	}
	if l.File != "" {
		b.WriteString(fmt.Sprintf("{%s,%d,%s}", l.File, l.Line, l.Func))
	}
	b.WriteString(" ")
	b.WriteString(l.Msg)
	if l.Suffix != "" {
		b.WriteString(" ")
		b.WriteString(l.Suffix)
	}
	ev.Time("ts", l.Timestamp).Msg(b.String())
}

// Logger is the chainable builder used to emit one trace Line, mirroring
// logiface's fluent Logger.Str()/Int() field chain cut down to the fields
// the trace format actually needs.
type Logger struct {
	prefix  string
	section string
	thread  string
	file    string
	line    int
	fn      string
	suffix  string
}

// New returns a Logger preset with the given PREFIX (e.g. a component tag).
func New(prefix string) Logger { return Logger{prefix: prefix} }

// Section sets the (SECTION) field.
func (l Logger) Section(name string) Logger { l.section = name; return l }

// Thread sets the [THREAD] field.
func (l Logger) Thread(name string) Logger { l.thread = name; return l }

// At sets the {FILE,LINE,FUNC} field.
func (l Logger) At(file string, line int, fn string) Logger {
	l.file, l.line, l.fn = file, line, fn
	return l
}

// Suffix sets the trailing SUFFIX text.
func (l Logger) Suffix(s string) Logger { l.suffix = s; return l }

// Msg emits the line if the current Level and (when Section is set) the
// section registry permit it.
func (l Logger) Msg(format string, args ...any) {
	lvl := GetLevel()
	if lvl == LevelNone {
		return
	}
	if l.section != "" && lvl >= LevelInfo && !SectionEnabled(l.section) {
		return
	}
	line := Line{
		Prefix:    l.prefix,
		Timestamp: time.Now(),
		Msg:       fmt.Sprintf(format, args...),
		Suffix:    l.suffix,
	}
	if lvl >= LevelInfo {
		line.Section = l.section
	}
	if lvl >= LevelVerbose {
		line.Thread = l.thread
	}
	if lvl >= LevelMax {
		line.File, line.Line, line.Func = l.file, l.line, l.fn
	}
	currentWriter().Write(line)
}
