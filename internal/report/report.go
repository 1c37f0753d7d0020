// Package report encodes plugin metrics as MQTT report records and wraps them
// in the host's outbound command line.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Metric keys, the last segment of a report topic.
const (
	KeyUptime      = "uptime"
	KeySWUptime    = "sw_uptime"
	KeyHostname    = "hostname"
	KeyOS          = "os"
	KeyTemperature = "temperature"
	KeyStatus      = "status"
)

// TopicPrefix is the first segment of every report topic.
const TopicPrefix = "tln"

const (
	commandPrefix = "send plugin mqtt report '"
	commandSuffix = "'"
)

// ErrNotReportCommand is returned by ParseCommand for lines that are not
// report commands.
var ErrNotReportCommand = errors.New("not a report command")

// Report is one metric destined for the MQTT bridge.
type Report struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

// Marshal returns the wire form {"topic":...,"payload":...}. HTML
// characters are written unescaped.
func (r Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal parses the wire form produced by Marshal.
func Unmarshal(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return r, nil
}

// Key returns the metric key, the topic segment after the namespace.
func (r Report) Key() string {
	if i := strings.LastIndexByte(r.Topic, '/'); i >= 0 {
		return r.Topic[i+1:]
	}
	return r.Topic
}

// Encoder builds reports under one namespace.
type Encoder struct {
	Namespace string
}

func NewEncoder(namespace string) *Encoder {
	return &Encoder{Namespace: namespace}
}

// Topic returns tln/<namespace>/<key>.
func (e *Encoder) Topic(key string) string {
	return TopicPrefix + "/" + e.Namespace + "/" + key
}

// Encode wraps a raw value. The payload is the value as given, never a
// human-readable rendering.
func (e *Encoder) Encode(key, value string) Report {
	return Report{Topic: e.Topic(key), Payload: value}
}

// Command returns the outbound line send plugin mqtt report '<json>'.
func Command(r Report) (string, error) {
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}
	return commandPrefix + string(data) + commandSuffix, nil
}

// ParseCommand is the inverse of Command. The payload may itself contain
// single quotes, so only the outer pair is stripped.
func ParseCommand(line string) (Report, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, commandPrefix) || !strings.HasSuffix(line, commandSuffix) ||
		len(line) < len(commandPrefix)+len(commandSuffix) {
		return Report{}, fmt.Errorf("%w: %q", ErrNotReportCommand, line)
	}
	body := line[len(commandPrefix) : len(line)-len(commandSuffix)]
	return Unmarshal([]byte(body))
}
