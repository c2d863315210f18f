package logger

import (
	"fmt"
	"testing"
)

func TestLogger(t *testing.T) {
	// skip in ci checks
	if true {
		t.Skip()
	}

	Info("hello")

	Info("computed %d delegates", 12)

	x := map[string]string{
		"dao": "arbitrum",
	}
	Info("scoring %v", x)

	Error(fmt.Errorf("ah man"))

	t.Fail()
}
