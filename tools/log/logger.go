// Package log 是对 logrus 的一层薄封装，整个项目通过它输出日志。
// 指标和信号检测本身不写日志，只有策略、分析器、图表服务和命令行会用到。
package log

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// 日志级别
var (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

type (
	Level         = logrus.Level
	Fields        = logrus.Fields
	Entry         = logrus.Entry
	TextFormatter = logrus.TextFormatter
	JSONFormatter = logrus.JSONFormatter
)

// ParseLevel 解析 info、debug 等级别名称，大小写不敏感
func ParseLevel(level string) (Level, error) {
	return logrus.ParseLevel(strings.TrimSpace(level))
}

// CheckErr 错误不为 nil 时按给定级别记录
func CheckErr(level Level, err error) {
	if err != nil {
		Log(level, err)
	}
}

// Log 按指定级别记录日志
func Log(level Level, messages ...interface{}) {
	logrus.StandardLogger().Log(level, messages...)
}

func SetFormatter(formatter logrus.Formatter) {
	logrus.SetFormatter(formatter)
}

func SetLevel(level Level) {
	logrus.SetLevel(level)
}

func GetLevel() Level {
	return logrus.GetLevel()
}

func SetOutput(output io.Writer) {
	logrus.SetOutput(output)
}

func WithField(key string, value interface{}) *Entry {
	return logrus.WithField(key, value)
}

func WithFields(fields Fields) *Entry {
	return logrus.WithFields(fields)
}

func WithError(err error) *Entry {
	return logrus.WithError(err)
}

func Info(messages ...interface{}) {
	logrus.Info(messages...)
}

func Infof(format string, messages ...interface{}) {
	logrus.Infof(format, messages...)
}

func Warn(messages ...interface{}) {
	logrus.Warn(messages...)
}

func Warnf(format string, messages ...interface{}) {
	logrus.Warnf(format, messages...)
}

func Error(messages ...interface{}) {
	logrus.Error(messages...)
}

func Errorf(format string, messages ...interface{}) {
	logrus.Errorf(format, messages...)
}

func Fatal(messages ...interface{}) {
	logrus.Fatal(messages...)
}

func Debug(messages ...interface{}) {
	logrus.Debug(messages...)
}

func Debugf(format string, messages ...interface{}) {
	logrus.Debugf(format, messages...)
}
