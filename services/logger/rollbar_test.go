package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/user"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	conf := &core.Config{Env: "TEST", Debug: debug, Build: "test"}
	return NewRollbarLogger(log.New(&buf, "", 0), conf), &buf
}

func TestRollbarLogger_print(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *RollbarLogger)
		want string
	}{
		{
			name: "fields sorted",
			log:  func(l *RollbarLogger) { l.Info("api request", core.Fields{"status": 200, "method": "GET"}) },
			want: "INFO api request method=GET status=200\n",
		},
		{
			name: "error",
			log:  func(l *RollbarLogger) { l.Warn("remote call failed", errors.New("boom")) },
			want: "WARN remote call failed error=\"boom\"\n",
		},
		{
			name: "user",
			log:  func(l *RollbarLogger) { l.Error("login", user.User{ID: 3, Email: "a@b.c"}) },
			want: "ERROR login user=3\n",
		},
		{
			name: "debug",
			log:  func(l *RollbarLogger) { l.Debug("class loaded") },
			want: "DEBUG class loaded\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(true)
			tt.log(l)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRollbarLogger_debugDisabled(t *testing.T) {
	l, buf := newTestLogger(false)
	l.Enable(false)
	l.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newTestLogger(true)
	args := l.prepare("msg", []interface{}{core.Fields{"a": 1}, user.User{ID: 1}, assertErr})
	assert.Equal(t, []interface{}{"msg", map[string]interface{}{"a": 1}, assertErr}, args)
}

var assertErr = errors.New("x")
