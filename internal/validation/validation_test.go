package validation

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestValidateArgument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		// Valid cases
		{name: "simple word", input: "world", wantErr: false},
		{name: "empty string", input: "", wantErr: false},
		{name: "unicode", input: "表名", wantErr: false},
		{name: "with spaces", input: "hello world", wantErr: false},
		{name: "with newline", input: "a\nb", wantErr: false},
		{name: "with quotes", input: `it's "quoted"`, wantErr: false},
		{name: "exactly max length", input: strings.Repeat("a", MaxArgumentLength), wantErr: false},

		// Invalid cases
		{name: "too long", input: strings.Repeat("a", MaxArgumentLength+1), wantErr: true, errMsg: "exceeds maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgument(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArgument(%.20q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && err != nil {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ValidateArgument(%.20q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateArgument(%.20q) error = %q, want error containing %q", tt.input, err.Error(), tt.errMsg)
				}
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Valid cases
		{name: "simple", input: "greetings", wantErr: false},
		{name: "empty", input: "", wantErr: false},
		{name: "with tab", input: "a\tb", wantErr: false},
		{name: "valid 255 chars", input: strings.Repeat("t", 255), wantErr: false},

		// Invalid cases
		{name: "too long 256 chars", input: strings.Repeat("t", 256), wantErr: true},
		{name: "newline", input: "line\nbreak", wantErr: true},
		{name: "carriage return", input: "line\rbreak", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArgumentConcurrent(t *testing.T) {
	// No shared mutable state, bind may run on any host thread
	const numGoroutines = 100
	const numIterations = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				_ = ValidateArgument("world")
				_ = ValidateArgument(strings.Repeat("a", MaxArgumentLength+1))
				_ = ValidateTitle("title")
			}
		}()
	}

	wg.Wait()
}
