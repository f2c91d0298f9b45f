package alog

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

// accessLineFormatter renders an access log entry in Apache Combined
// Log Format, the teacher's default (logging/access_test.go), e.g.:
//
//	127.0.0.1 - - [02/Jan/2006:15:04:05 -0700] "GET /x HTTP/1.1" 200 123 "-" "curl/8.0" 4
type accessLineFormatter struct{}

func (accessLineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	f := e.Data
	referer := fmt.Sprint(f["referer"])
	if referer == "" {
		referer = "-"
	}
	agent := fmt.Sprint(f["user-agent"])
	if agent == "" {
		agent = "-"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s - %s [%s] %q %d %d %q %q %d\n",
		f["host"],
		f["auth-user"],
		f["timestamp"],
		fmt.Sprintf("%s %s %s", f["method"], f["uri"], f["proto"]),
		f["status"],
		f["response-size"],
		referer,
		agent,
		f["duration"],
	)
	return buf.Bytes(), nil
}
