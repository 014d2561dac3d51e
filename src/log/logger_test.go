// MIT License
//
// Copyright (c) 2024 sphinx-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package logger

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLevelsAndBuffer(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(&bytes.Buffer{})
	ResetLogs()
	SetLevel(WARN)
	defer SetLevel(INFO)

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	Errorf("also shown")

	require.NotContains(t, out.String(), "hidden")
	require.Contains(t, out.String(), "shown 2")
	require.Contains(t, out.String(), "WARN")
	require.Contains(t, GetLogs(), "also shown")

	SetLevel(DEBUG)
	Debug("now visible")
	require.Contains(t, GetLogs(), "now visible")
}

func TestSharedLoggerFollowsLevel(t *testing.T) {
	SetOutput(&bytes.Buffer{})
	ResetLogs()
	SetLevel(ERROR)
	defer SetLevel(INFO)

	Logger().Info("structured info")
	Logger().Error("structured error", zap.String("field", "value"))

	logs := GetLogs()
	require.NotContains(t, logs, "structured info")
	require.Contains(t, logs, "structured error")
	require.Contains(t, logs, "value")
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]LogLevel{"debug": DEBUG, "INFO": INFO, "warn": WARN, "error": ERROR} {
		got, ok := ParseLevel(name)
		require.True(t, ok, name)
		require.Equal(t, want, got)
	}
	_, ok := ParseLevel("loud")
	require.False(t, ok)
	require.Equal(t, "WARN", WARN.String())
}

func TestBufferKeepsRecentLines(t *testing.T) {
	SetOutput(&bytes.Buffer{})
	ResetLogs()
	defer ResetLogs()

	old := maxBufferedLogs
	maxBufferedLogs = 1024
	defer func() { maxBufferedLogs = old }()

	for i := 0; i < 200; i++ {
		Infof("line %03d", i)
	}

	logs := GetLogs()
	require.LessOrEqual(t, len(logs), 1024)
	require.NotContains(t, logs, "line 000")
	require.Contains(t, logs, "line 199")
	// Trimming happens on line boundaries.
	require.True(t, strings.HasSuffix(logs, "\n"))
	first := strings.SplitN(logs, "\n", 2)[0]
	require.Contains(t, first, "INFO", fmt.Sprintf("partial first line %q", first))
}
