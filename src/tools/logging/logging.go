// Copyright 2016 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// log is the base logger of the application
var log = &zapLogger{}

// A Logger writes logs to a handler
type Logger interface {
	// Panic logs a error level message then panics
	Panic(msg string, ctx ...interface{})
	// Error logs an error level message
	Error(msg string, ctx ...interface{})
	// Warn logs a warning level message
	Warn(msg string, ctx ...interface{})
	// Info logs an information level message
	Info(msg string, ctx ...interface{})
	// Debug logs a debug level message. This may be very verbose
	Debug(msg string, ctx ...interface{})
	// New returns a child logger with the given context
	New(ctx ...interface{}) Logger
	// Sync the logger cache
	Sync() error
}

// zapLogger is an implementation of logger using Uber's zap library.
//
// A zapLogger without backend silently drops messages until
// an ancestor gets one through Initialize.
type zapLogger struct {
	zap    *zap.SugaredLogger
	ctx    []interface{}
	parent *zapLogger
}

// Panic logs a error level message then panics
func (l *zapLogger) Panic(msg string, ctx ...interface{}) {
	if l.checkParent() {
		l.zap.Errorw(msg, ctx...)
	}
	panicData := msg + "\n"
	for i := 0; i+1 < len(ctx); i += 2 {
		panicData += fmt.Sprintf("\t%v : %v\n", ctx[i], ctx[i+1])
	}
	panic(panicData)
}

// Error logs an error level message
func (l *zapLogger) Error(msg string, ctx ...interface{}) {
	if !l.checkParent() {
		return
	}
	l.zap.Errorw(msg, ctx...)
}

// Warn logs a warning level message
func (l *zapLogger) Warn(msg string, ctx ...interface{}) {
	if !l.checkParent() {
		return
	}
	l.zap.Warnw(msg, ctx...)
}

// Info logs an information level message
func (l *zapLogger) Info(msg string, ctx ...interface{}) {
	if !l.checkParent() {
		return
	}
	l.zap.Infow(msg, ctx...)
}

// Debug logs a debug level message. This may be very verbose
func (l *zapLogger) Debug(msg string, ctx ...interface{}) {
	if !l.checkParent() {
		return
	}
	l.zap.Debugw(msg, ctx...)
}

// Sync the logger cache
func (l *zapLogger) Sync() error {
	if !l.checkParent() || l.zap == nil {
		return errors.New("syncing a non-initialized logger")
	}
	return l.zap.Sync()
}

// New returns a child logger with the given context
func (l *zapLogger) New(ctx ...interface{}) Logger {
	return &zapLogger{
		ctx:    ctx,
		parent: l,
	}
}

// checkParent recursively looks for an ancestor with a valid zap logger backend.
//
// If one is found, all children zap loggers are instantiated and checkParent returns true.
// Otherwise, it returns false.
func (l *zapLogger) checkParent() bool {
	if l.zap != nil {
		return true
	}
	if l.parent == nil {
		return false
	}
	l.parent.checkParent()
	if l.parent.zap != nil {
		l.zap = l.parent.zap.With(l.ctx...)
		return true
	}
	return false
}

// Initialize starts the base logger used by all Kulturhaus components
func Initialize() {
	logConfig := zap.NewProductionConfig()
	if viper.GetBool("Debug") {
		logConfig = zap.NewDevelopmentConfig()
	}
	logLevel := zap.NewAtomicLevel()
	err := logLevel.UnmarshalText([]byte(viper.GetString("LogLevel")))
	if err != nil {
		fmt.Printf("error while reading log level. Falling back to info. Error: %s\n", err.Error())
		logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logConfig.Level = logLevel

	var outputPaths []string
	if viper.GetBool("LogStdout") {
		outputPaths = append(outputPaths, "stdout")
	}
	if path := viper.GetString("LogFile"); path != "" {
		outputPaths = append(outputPaths, path)
	}
	logConfig.OutputPaths = outputPaths

	plainLog, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	log.zap = plainLog.Sugar()

	log.Info("Kulturhaus Starting...")
}

// GetLogger returns a context logger for the given module
func GetLogger(moduleName string) Logger {
	return log.New("module", moduleName)
}

// LogPanicData logs the panic data with the caller and returns an
// error with the panic message.
func LogPanicData(panicData interface{}) error {
	msg := fmt.Sprintf("%v", panicData)
	caller := "???"
	if pc, _, _, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}
	log.Error("Kulturhaus panicked", "msg", msg, "caller", caller)
	return errors.New(msg)
}

// LogForGin returns a gin.HandlerFunc (middleware) that logs requests using Logger.
//
// Requests with errors are logged at error level, other
// requests at info level, or warn level for 4xx/5xx responses.
func LogForGin(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// some evil middlewares modify this value
		path := c.Request.URL.Path
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		ctxLogger := logger.New(
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", latency,
		)

		switch {
		case len(c.Errors) > 0:
			ctxLogger.Error(c.Errors.String())
		case status >= 400:
			ctxLogger.Warn("HTTP Error")
		default:
			ctxLogger.Info("")
		}
	}
}

// RecoveryForGin returns a middleware that turns panics into 500 responses
// and logs them through LogPanicData.
func RecoveryForGin() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := LogPanicData(r)
				c.AbortWithStatusJSON(500, gin.H{"success": false, "error": "Internal server error"})
				c.Error(err)
			}
		}()
		c.Next()
	}
}
