package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DebugEnvVar enables debug output when set to any non-empty value
const DebugEnvVar = "WORKLOG_DEBUG"

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	verbose bool
)

// SetOutput redirects all log output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// SetVerbose turns debug output on regardless of the environment
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// DebugEnabled returns true if debug mode is enabled via WORKLOG_DEBUG or SetVerbose
func DebugEnabled() bool {
	mu.Lock()
	v := verbose
	mu.Unlock()
	return v || os.Getenv(DebugEnvVar) != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		write("DEBUG", fmt.Sprintf(format, args...))
	}
}

// Infof always prints
func Infof(format string, args ...interface{}) {
	write("INFO", fmt.Sprintf(format, args...))
}

// Errorf always prints
func Errorf(format string, args ...interface{}) {
	write("ERROR", fmt.Sprintf(format, args...))
}

func write(level, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	fmt.Fprintf(out, "%s [%s] %s", time.Now().Format(time.RFC3339), level, msg)
}
