package cli

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// GlogLogger adapts the glog package to the debugger's Logger
// interface. Debug messages map to verbosity level 2, info messages to
// level 1, so -v shows operation progress and -vv the raw wire
// traffic.
type GlogLogger struct{}

func (GlogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, formatMessage(msg, keysAndValues))
	}
}

func (GlogLogger) Info(msg string, keysAndValues ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, formatMessage(msg, keysAndValues))
	}
}

func (GlogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, formatMessage(msg, keysAndValues))
}

func formatMessage(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return sb.String()
}
