/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	LogPrefix       = "[go-tracker] "
	HelpLevels      = "Must be one of: error, warning, info, debug."
	TimestampFormat = "2006/01/02 15:04:05.000000"
)

var levelMapping = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warning": logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"debug":   logrus.DebugLevel,
}

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&Formatter{TimestampFormat: TimestampFormat})
	return l
}

// Formatter prints one line per entry:
// 2025/04/06 17:30:00.000000 [INF] [go-tracker] message key=value
type Formatter struct {
	TimestampFormat string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	b.WriteString(entry.Time.Format(f.TimestampFormat))
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 3 {
		level = level[:3]
	}
	fmt.Fprintf(b, " [%s] %s%s", level, LogPrefix, entry.Message)
	for k, v := range entry.Data {
		fmt.Fprintf(b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func SetLevel(strLevel string) error {
	level, ok := levelMapping[strLevel]
	if !ok {
		return errors.New("Wrong log level. " + HelpLevels)
	}
	logger.SetLevel(level)
	return nil
}

func Init(out io.Writer, strLevel string) {
	logger.SetOutput(out)
	if err := SetLevel(strLevel); err != nil {
		panic(err)
	}
}

func Error(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Writer logs every line written to it at info level
func Writer() io.Writer {
	return logger.WriterLevel(logrus.InfoLevel)
}
