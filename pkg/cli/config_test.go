package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cordata/datakit/pkg/cli"
)

func tempConfig(t *testing.T) *cli.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := cli.LoadConfigWithPath("datakit", path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	return cfg
}

func TestLoadCreatesEmptyConfig(t *testing.T) {
	cfg := tempConfig(t)
	if cfg.AppName != "datakit" {
		t.Fatalf("AppName = %q, want %q", cfg.AppName, "datakit")
	}
	if len(cfg.Contexts) != 0 {
		t.Fatalf("new config has %d contexts, want 0", len(cfg.Contexts))
	}
	if _, err := os.Stat(cfg.Path()); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}

func TestAddUseContext(t *testing.T) {
	cfg := tempConfig(t)

	err := cfg.AddContext("local", &cli.Context{
		StoreDir: "/tmp/store",
		Prefix:   "app",
		Module:   "core",
		Format:   "yaml",
	})
	if err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("local"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	ctx, err := cfg.GetCurrentContext()
	if err != nil {
		t.Fatalf("GetCurrentContext: %v", err)
	}
	if ctx.Name != "local" || ctx.StoreDir != "/tmp/store" {
		t.Fatalf("context = %+v", ctx)
	}
}

func TestUseUnknownContext(t *testing.T) {
	cfg := tempConfig(t)
	if err := cfg.UseContext("missing"); err == nil {
		t.Fatal("UseContext accepted an unknown context")
	}
}

func TestDeleteContextClearsCurrent(t *testing.T) {
	cfg := tempConfig(t)
	if err := cfg.AddContext("local", &cli.Context{}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("local"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}
	if err := cfg.DeleteContext("local"); err != nil {
		t.Fatalf("DeleteContext: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Fatalf("CurrentContext = %q, want empty", cfg.CurrentContext)
	}
	if _, err := cfg.GetCurrentContext(); err == nil {
		t.Fatal("GetCurrentContext succeeded with no current context")
	}
}

func TestResolveContext(t *testing.T) {
	cfg := tempConfig(t)
	if err := cfg.AddContext("a", &cli.Context{Prefix: "alpha"}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.AddContext("b", &cli.Context{Prefix: "beta"}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("a"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext(current): %v", err)
	}
	if ctx.Prefix != "alpha" {
		t.Fatalf("current prefix = %q, want alpha", ctx.Prefix)
	}

	ctx, err = cfg.ResolveContext("b")
	if err != nil {
		t.Fatalf("ResolveContext(b): %v", err)
	}
	if ctx.Prefix != "beta" {
		t.Fatalf("named prefix = %q, want beta", ctx.Prefix)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := cli.LoadConfigWithPath("datakit", path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	if err := cfg.AddContext("local", &cli.Context{StoreDir: "/data/store"}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("local"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	reloaded, err := cli.LoadConfigWithPath("datakit", path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CurrentContext != "local" {
		t.Fatalf("CurrentContext = %q, want local", reloaded.CurrentContext)
	}
	ctx, err := reloaded.GetContext("local")
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if ctx.StoreDir != "/data/store" {
		t.Fatalf("StoreDir = %q, want /data/store", ctx.StoreDir)
	}
}

func TestListContextsSorted(t *testing.T) {
	cfg := tempConfig(t)
	for _, name := range []string{"c", "a", "b"} {
		if err := cfg.AddContext(name, &cli.Context{}); err != nil {
			t.Fatalf("AddContext(%s): %v", name, err)
		}
	}
	got := cfg.ListContexts()
	want := []string{"a", "b", "c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ListContexts = %v, want %v", got, want)
	}
}

func TestKeySegmentDefaults(t *testing.T) {
	ctx := &cli.Context{}
	if got := ctx.KeyPrefix(); got != cli.DefaultPrefix {
		t.Fatalf("KeyPrefix = %q, want %q", got, cli.DefaultPrefix)
	}
	if got := ctx.KeyModule(); got != cli.DefaultModule {
		t.Fatalf("KeyModule = %q, want %q", got, cli.DefaultModule)
	}
	ctx.Prefix = "app"
	ctx.Module = "billing"
	if ctx.KeyPrefix() != "app" || ctx.KeyModule() != "billing" {
		t.Fatalf("explicit segments not honored: %+v", ctx)
	}
}

func TestExtraValues(t *testing.T) {
	ctx := &cli.Context{}
	if v := ctx.GetExtra("missing"); v != "" {
		t.Fatalf("GetExtra on empty = %q, want empty", v)
	}
	ctx.SetExtra("separator", ":")
	if v := ctx.GetExtra("separator"); v != ":" {
		t.Fatalf("GetExtra = %q, want %q", v, ":")
	}
}
