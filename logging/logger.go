package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

func (l Level) prefix() string {
	switch l {
	case FATAL:
		return "[fatal] "
	case ERROR:
		return "[error] "
	case WARNING:
		return "[warn] "
	case DEBUG:
		return "[debug] "
	}
	return ""
}

type Record struct {
	Level     Level
	Component string
	Message   string
}

const (
	CLEARLINE = "\x1b[2K"
)

func Progress(msg string) {
	defaultLogBroker.Progress <- msg
}

// SetQuiet disables the progress line.
func SetQuiet(quiet bool) {
	defaultLogBroker.setQuiet(quiet)
}

// SetVerbose enables DEBUG records.
func SetVerbose(verbose bool) {
	defaultLogBroker.setVerbose(verbose)
}

type Logger struct {
	Component string
}

func NewLogger(component string) *Logger {
	return &Logger{component}
}

func (l *Logger) send(level Level, msg string) {
	defaultLogBroker.Records <- Record{level, l.Component, msg}
}

func (l *Logger) Print(args ...interface{}) {
	l.send(INFO, fmt.Sprint(args...))
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	l.send(INFO, fmt.Sprintf(msg, args...))
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	if !defaultLogBroker.isVerbose() {
		return
	}
	l.send(DEBUG, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(args ...interface{}) {
	l.send(WARNING, fmt.Sprint(args...))
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	l.send(WARNING, fmt.Sprintf(msg, args...))
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.send(ERROR, fmt.Sprintf(msg, args...))
}

// Fatal logs the message, flushes all pending records and exits with 1.
func (l *Logger) Fatal(args ...interface{}) {
	l.send(FATAL, fmt.Sprint(args...))
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	l.Fatal(fmt.Sprintf(msg, args...))
}

// StartStep prints msg as progress. The duration is logged with StopStep.
func (l *Logger) StartStep(msg string) string {
	defaultLogBroker.StepStart <- Step{l.Component, msg}
	return msg
}

func (l *Logger) StopStep(msg string) {
	defaultLogBroker.StepStop <- Step{l.Component, msg}
}

type Step struct {
	Component string
	Name      string
}

// LogBroker owns the output. All records, progress messages and steps
// are passed through its channels and printed by a single goroutine.
type LogBroker struct {
	Records   chan Record
	Progress  chan string
	StepStart chan Step
	StepStop  chan Step

	out io.Writer

	mu      sync.Mutex
	quiet   bool
	verbose bool

	quit         chan struct{}
	done         chan struct{}
	newline      bool
	lastProgress string
}

func newLogBroker(out io.Writer) *LogBroker {
	return &LogBroker{
		Records:   make(chan Record, 8),
		Progress:  make(chan string),
		StepStart: make(chan Step),
		StepStop:  make(chan Step),
		out:       out,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		newline:   true,
	}
}

func (l *LogBroker) setQuiet(quiet bool) {
	l.mu.Lock()
	l.quiet = quiet
	l.mu.Unlock()
}

func (l *LogBroker) isQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quiet
}

func (l *LogBroker) setVerbose(verbose bool) {
	l.mu.Lock()
	l.verbose = verbose
	l.mu.Unlock()
}

func (l *LogBroker) isVerbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

func (l *LogBroker) loop() {
	defer close(l.done)
	steps := make(map[Step]time.Time)
For:
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		case progress := <-l.Progress:
			if !l.isQuiet() {
				l.printProgress(progress)
			}
		case step := <-l.StepStart:
			steps[step] = time.Now()
			if !l.isQuiet() {
				l.printProgress(step.Name)
			}
		case step := <-l.StepStop:
			startTime := steps[step]
			delete(steps, step)
			l.lastProgress = ""
			l.printRecord(Record{INFO, step.Component, step.Name + " took: " + time.Since(startTime).Round(time.Millisecond).String()})
		case <-l.quit:
			break For
		}
	}
Flush:
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		default:
			break Flush
		}
	}
	if !l.newline {
		fmt.Fprintln(l.out)
	}
}

func (l *LogBroker) printPrefix() {
	fmt.Fprint(l.out, "[", time.Now().Format(time.Stamp), "] ")
}

func (l *LogBroker) printComponent(component string) {
	if component != "" {
		fmt.Fprint(l.out, "[", component, "] ")
	}
}

func (l *LogBroker) printRecord(record Record) {
	if record.Level == DEBUG && !l.isVerbose() {
		return
	}
	if !l.newline {
		fmt.Fprint(l.out, CLEARLINE)
	}
	l.printPrefix()
	l.printComponent(record.Component)
	fmt.Fprint(l.out, record.Level.prefix())
	fmt.Fprintln(l.out, record.Message)
	l.newline = true
	if l.lastProgress != "" {
		l.printProgress(l.lastProgress)
	}
}

func (l *LogBroker) printProgress(progress string) {
	l.printPrefix()
	fmt.Fprint(l.out, progress, "\r")
	l.lastProgress = progress
	l.newline = false
}

func (l *LogBroker) shutdown() {
	close(l.quit)
	<-l.done
}

// Shutdown prints all pending records and stops the broker. Nothing
// must be logged after Shutdown.
func Shutdown() {
	shutdownOnce.Do(defaultLogBroker.shutdown)
}

var (
	defaultLogBroker *LogBroker
	shutdownOnce     sync.Once
)

func init() {
	defaultLogBroker = newLogBroker(os.Stdout)
	go defaultLogBroker.loop()
}
