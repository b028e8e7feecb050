package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.SetOut(&buf)

	versionCmd.Run(cmd, nil)
	if got := buf.String(); got != "insec dev\n" {
		t.Fatalf("unexpected output %q", got)
	}

	buf.Reset()
	_ = cmd.Flags().Set("verbose", "true")
	versionCmd.Run(cmd, nil)
	if !strings.Contains(buf.String(), "commit: unknown") {
		t.Fatalf("expected verbose details, got %q", buf.String())
	}
}
