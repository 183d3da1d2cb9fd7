// Package logging routes the standard logger to stdout and an optional log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mwiater/paper2pod/internal/util"
)

const maxPayloadLen = 2000

var (
	mu       sync.Mutex
	logFile  *os.File
	verbose  bool
	keyRegex = regexp.MustCompile(`(sk-[A-Za-z0-9_\-]{4})[A-Za-z0-9_\-]+|(AIza[A-Za-z0-9_\-]{4})[A-Za-z0-9_\-]+`)
)

// Init sends log output to out and, when logPath is set, appends it to that file.
// debug enables full request/response payload logging.
func Init(out io.Writer, logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	verbose = debug

	var writers []io.Writer
	if out != nil {
		writers = append(writers, out)
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close flushes and releases the log file, restoring stderr output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent logs a formatted event line.
func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(redact(msg))
}

// LogWarn logs a formatted warning line.
func LogWarn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println("[WARN] " + redact(msg))
}

// LogRequest logs one side of an upstream exchange. Payloads are truncated
// unless debug logging is enabled.
func LogRequest(direction, host, model, tool string, payload any) {
	mu.Lock()
	full := verbose
	mu.Unlock()
	msg := buildRequestMessage(direction, host, model, tool, payload, full)
	log.Println(msg)
}

func buildRequestMessage(direction, host, model, tool string, payload any, full bool) string {
	dir := strings.TrimSpace(direction)
	if dir != "" {
		dir = strings.ToUpper(dir)
	}
	hostValue := strings.TrimSpace(host)
	if hostValue == "" {
		hostValue = "unknown"
	}
	modelValue := strings.TrimSpace(model)
	if modelValue == "" {
		modelValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", dir)}
	parts = append(parts, fmt.Sprintf("host=%s", hostValue))
	parts = append(parts, fmt.Sprintf("model=%s", modelValue))
	if tool = strings.TrimSpace(tool); tool != "" {
		parts = append(parts, fmt.Sprintf("tool=%s", tool))
	}
	body := redact(formatPayload(payload))
	if !full && utf8.RuneCountInString(body) > maxPayloadLen {
		body = fmt.Sprintf("%s(%d bytes)", util.TruncateRunes(body, maxPayloadLen), len(body))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", body))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// redact masks anything shaped like an OpenAI or Google API key.
func redact(s string) string {
	return keyRegex.ReplaceAllString(s, "$1$2****")
}
