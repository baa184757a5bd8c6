package lib

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

type LoggerStruct struct {
	Print    func(args ...interface{})
	Flush    func()
	disabled bool
}

var Logger = &LoggerStruct{
	Print: func(args ...interface{}) {
		fmt.Fprint(os.Stderr, args...)
	},
	Flush:    func() {},
	disabled: envOff("LOGGING"),
}

var doDebug = envOn("DEBUG")

// envOff is true when the var starts with "n", so LOGGING=n and LOGGING=no both disable.
func envOff(name string) bool {
	return strings.ToLower(os.Getenv(name) + " ")[:1] == "n"
}

func envOn(name string) bool {
	return strings.ToLower(os.Getenv(name) + " ")[:1] == "y"
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???: "
	}
	parts := strings.Split(file, "/")
	if len(parts) > 1 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d: ", file, line)
}

func line(prefix string, v []interface{}) []interface{} {
	var xs []string
	for _, x := range v {
		xs = append(xs, fmt.Sprint(x))
	}
	return []interface{}{prefix, strings.Join(xs, " "), "\n"}
}

func (l *LoggerStruct) Println(v ...interface{}) {
	if !l.disabled {
		l.Print(line(caller(2), v)...)
	}
}

func (l *LoggerStruct) Printf(format string, v ...interface{}) {
	if !l.disabled {
		l.Print(fmt.Sprintf(caller(2)+format, v...))
	}
}

func (l *LoggerStruct) Fatal(v ...interface{}) {
	l.Print(line(caller(2), v)...)
	l.Flush()
	os.Exit(1)
}

func (l *LoggerStruct) Fatalf(format string, v ...interface{}) {
	l.Print(fmt.Sprintf(caller(2)+format, v...))
	l.Flush()
	os.Exit(1)
}

type Debug struct {
	start time.Time
	name  string
}

func (d *Debug) Log() {
	Logger.Printf("debug: %s took %s\n", d.name, time.Since(d.start))
}
