package main

import (
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"import", "migrate", "fields", "logs"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v", name, err)
		}
	}

	importCmd, _, _ := root.Find([]string{"import"})
	if importCmd.Flags().Lookup("file") == nil || importCmd.Flags().Lookup("migrate") == nil {
		t.Fatalf("expected import flags")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("expected persistent config flag")
	}
}

func TestImportRequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"import", "--config", t.TempDir()})
	root.SetOut(&discard{})
	root.SetErr(&discard{})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing --file to fail")
	}
}

func TestLogsRejectsUnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"logs", "--config", t.TempDir(), "--format", "xml"})
	root.SetOut(&discard{})
	root.SetErr(&discard{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid --format") {
		t.Fatalf("expected unknown format to fail before connecting, got %v", err)
	}
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
