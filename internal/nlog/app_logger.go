package nlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type Logger interface {
	Logf(format string, v ...any)
}

type subsystemLogger struct {
	subsystem string
	logger    *AppLogger
}

func (s *subsystemLogger) Logf(format string, v ...any) {
	s.logger.Logf(s.subsystem, format, v...)
}

type logEntry struct {
	subsystem string
	formatted string
}

// AppLogger writes one log file per subsystem under <folder>/logs.
// Entries are queued and written by Run.
type AppLogger struct {
	folder string

	fileMapper map[string]*os.File
	logMapper  map[string]*log.Logger

	lock           sync.RWMutex
	currentLogFunc func(*log.Logger, string, ...any)

	inbox chan logEntry
}

func NewAppLogger(folder string, logging bool) (*AppLogger, error) {
	logDir := filepath.Join(folder, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}
	a := &AppLogger{
		folder:         logDir,
		fileMapper:     make(map[string]*os.File),
		logMapper:      make(map[string]*log.Logger),
		currentLogFunc: nilLogf,
		inbox:          make(chan logEntry, 600),
	}

	if logging {
		a.EnableLogging()
	}

	return a, nil
}

func (a *AppLogger) RegisterSubsystem(subsystem string) (Logger, error) {
	file, err := os.OpenFile(filepath.Join(a.folder, subsystem+".log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	if old, ok := a.fileMapper[subsystem]; ok {
		old.Close()
	}
	a.logMapper[subsystem] = log.New(file, fmt.Sprintf("[%s]: ", subsystem), log.Ldate|log.Ltime)
	a.fileMapper[subsystem] = file
	return &subsystemLogger{subsystem, a}, nil
}

func (a *AppLogger) GetSubsystemLogger(subsystem string) (Logger, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	if _, ok := a.logMapper[subsystem]; !ok {
		return nil, fmt.Errorf("The subsystem was not registered {%s}", subsystem)
	}
	return &subsystemLogger{subsystem, a}, nil
}

func (a *AppLogger) EnableLogging() {
	a.lock.Lock()
	a.currentLogFunc = defaultLogf
	a.lock.Unlock()
}

func (a *AppLogger) DisableLogging() {
	a.lock.Lock()
	a.currentLogFunc = nilLogf
	a.lock.Unlock()
}

// Logf queues an entry. When the inbox is full the entry is dropped rather
// than blocking the caller.
func (a *AppLogger) Logf(subsystem, format string, v ...any) {
	select {
	case a.inbox <- logEntry{subsystem, fmt.Sprintf(format, v...)}:
	default:
	}
}

func (a *AppLogger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.drain()
			return
		case msg := <-a.inbox:
			a.actualWrite(msg.subsystem, msg.formatted)
		}
	}
}

func (a *AppLogger) drain() {
	for {
		select {
		case msg := <-a.inbox:
			a.actualWrite(msg.subsystem, msg.formatted)
		default:
			return
		}
	}
}

func (a *AppLogger) actualWrite(subsystem, formatted string) error {
	a.lock.RLock()
	logFunc := a.currentLogFunc
	logger, ok := a.logMapper[subsystem]
	a.lock.RUnlock()

	if !ok {
		return fmt.Errorf("Logger is not setup for this subsystem")
	}
	if logFunc != nil {
		logFunc(logger, formatted)
	}
	return nil
}

func (a *AppLogger) CloseAll() {
	a.lock.Lock()
	defer a.lock.Unlock()

	for _, file := range a.fileMapper {
		file.Sync()
		file.Close()
	}
	clear(a.fileMapper)
	clear(a.logMapper)
}

func defaultLogf(l *log.Logger, format string, a ...any) {
	l.Print(format)
}

func nilLogf(*log.Logger, string, ...any) {}
