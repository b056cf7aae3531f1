package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/goleak"

	"github.com/decker502/netfield/pkg/field"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init() failed: %v", err)
	}
	screen.SetSize(40, 12)
	return screen
}

func runAsync(ctx context.Context, screen tcell.Screen, cfg field.Config, opts Options) <-chan error {
	done := make(chan error, 1)
	go func() { done <- Run(ctx, screen, cfg, opts) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return")
	}
}

func TestRun_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q 键", tcell.KeyRune, 'q'},
		{"Esc 键", tcell.KeyEscape, 0},
		{"Ctrl+C", tcell.KeyCtrlC, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			screen := newSimScreen(t)
			defer screen.Fini()

			done := runAsync(context.Background(), screen, field.DefaultConfig(), Options{FrameInterval: 5 * time.Millisecond})
			time.Sleep(50 * time.Millisecond)
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			waitDone(t, done)
		})
	}
}

func TestRun_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	screen := newSimScreen(t)
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, screen, field.DefaultConfig(), Options{FrameInterval: 5 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)
	cancel()
	waitDone(t, done)
}

func TestRun_InvalidConfig(t *testing.T) {
	screen := newSimScreen(t)
	defer screen.Fini()

	cfg := field.DefaultConfig()
	cfg.ParticleCount = 0
	if err := Run(context.Background(), screen, cfg, Options{}); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestRun_ReloadKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	screen := newSimScreen(t)
	defer screen.Fini()

	reload := make(chan field.Config, 2)
	done := runAsync(context.Background(), screen, field.DefaultConfig(), Options{
		FrameInterval: 5 * time.Millisecond,
		Reload:        reload,
	})

	bad := field.DefaultConfig()
	bad.ParticleCount = -1
	reload <- bad

	good := field.DefaultConfig()
	good.ParticleCount = 5
	reload <- good

	time.Sleep(100 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitDone(t, done)
}
