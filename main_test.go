package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"blogsite/service"

	"github.com/stretchr/testify/assert"
)

func callMain() (int, string) {
	exitCode := -1
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
	}

	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outputDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(outputDone)
	}()

	RealMain()

	w.Close()
	os.Stdout = oldStdout
	<-outputDone

	return exitCode, buf.String()
}

func TestRealMain(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
	}{
		{
			name:           "help command",
			args:           []string{"blogsite", "help"},
			expectedOutput: "Usage: blogsite <command> [options]",
		},
		{
			name:           "version command",
			args:           []string{"blogsite", "version"},
			expectedOutput: "blogsite version " + service.AppVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			exitCode, output := callMain()
			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, 0, exitCode)
		})
	}
}
