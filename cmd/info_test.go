package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestInfoCommand(t *testing.T) {
	disableColor(t)
	t.Cleanup(func() { *cliConfig = *newCLIConfig() })
	*cliConfig = *newCLIConfig()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := infoCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"api.ssllabs.com",
		"Reputation lookup: disabled",
		"headers=8 tls=15 hsts=15 title=8 reputation=8",
		"Report cache:        disabled",
		"paypal.com",
		"+2 threat_reputation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
