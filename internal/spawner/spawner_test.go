package spawner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lox/bountybot/game"
)

func TestSpawnerHandsOverTheEnvironment(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	s := New(logger)

	outFile := filepath.Join(t.TempDir(), "env.txt")
	script := `#!/bin/sh
echo "$BOUNTYBOT_HOST:$BOUNTYBOT_PORT $BOUNTYBOT_NAME $BOUNTYBOT_SEED $BOUNTYBOT_STACK/$BOUNTYBOT_SMALL_BLIND/$BOUNTYBOT_BIG_BLIND" > "$1"
`
	scriptFile := filepath.Join(t.TempDir(), "bot.sh")
	if err := os.WriteFile(scriptFile, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	proc, err := s.Start(context.Background(), Bot{
		Name:    "alpha",
		Command: "sh",
		Args:    []string{scriptFile, outFile},
		Addr:    "127.0.0.1:9999",
		Seed:    42,
		Stakes:  game.Config{StartingStack: 400, SmallBlind: 1, BigBlind: 2},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := proc.Wait(); err != nil {
		t.Fatalf("bot exited with error: %v", err)
	}

	out, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(string(out)), "127.0.0.1:9999 alpha 42 400/1/2"; got != want {
		t.Errorf("environment = %q, want %q", got, want)
	}
}

func TestSpawnerOmitsZeroSeed(t *testing.T) {
	env, err := Bot{Name: "beta", Addr: "127.0.0.1:1"}.env()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env["BOUNTYBOT_SEED"]; ok {
		t.Error("zero seed should not be exported")
	}
	if env["BOUNTYBOT_NAME"] != "beta" {
		t.Errorf("name = %q, want beta", env["BOUNTYBOT_NAME"])
	}
}

func TestSpawnerStopsStuckBots(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	s := New(logger)

	script := `#!/bin/sh
trap 'exit 0' INT TERM
sleep 10
`
	scriptFile := filepath.Join(t.TempDir(), "sleeper.sh")
	if err := os.WriteFile(scriptFile, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Start(context.Background(), Bot{
		Name:    "sleeper",
		Command: "sh",
		Args:    []string{scriptFile},
		Addr:    "127.0.0.1:9999",
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := s.Alive(); got != 1 {
		t.Fatalf("Alive = %d, want 1", got)
	}

	s.StopAll()
	s.Wait()

	if got := s.Alive(); got != 0 {
		t.Errorf("Alive after stop = %d, want 0", got)
	}
}

func TestSpawnerRejectsBadAddresses(t *testing.T) {
	s := New(zerolog.Nop())
	if _, err := s.Start(context.Background(), Bot{Name: "x", Command: "true", Addr: "nonsense"}); err == nil {
		t.Error("expected an error for an address without a port")
	}
}

func TestSpawnerReportsStartFailures(t *testing.T) {
	s := New(zerolog.Nop())
	if _, err := s.Start(context.Background(), Bot{
		Name:    "ghost",
		Command: "/does/not/exist",
		Addr:    "127.0.0.1:9999",
	}); err == nil {
		t.Error("expected an error for a missing binary")
	}
}
