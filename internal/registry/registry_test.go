package registry

import (
	"errors"
	"testing"
	"time"

)

type fakeSpawner struct {
	nextPID int32
	err     error
	calls   int
}

func (s *fakeSpawner) Spawn(argv []string) (int32, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.nextPID++
	return s.nextPID, nil
}

type fakeProber struct {
	pids  []int32
	dead  map[int32]bool
	names map[int32]string
}

func newFakeProber(pids ...int32) *fakeProber {
	names := make(map[int32]string, len(pids))
	for _, pid := range pids {
		names[pid] = "proc"
	}
	return &fakeProber{pids: pids, dead: make(map[int32]bool), names: names}
}

func (p *fakeProber) Alive(pid int32) bool { return !p.dead[pid] }
func (p *fakeProber) Identity(pid int32) (string, string) {
	name := p.names[pid]
	if name == "" {
		name = "spawned"
	}
	return name, name + " --arg"
}
func (p *fakeProber) ListPIDs() []int32 { return p.pids }

func TestLaunchGroupValidation(t *testing.T) {
	tests := []struct {
		name    string
		group   string
		argv    []string
		wantErr error
		spawned bool
		state   State
	}{
		{name: "foreground", group: "foreground", argv: []string{"firefox"}, state: StateForeground, spawned: true},
		{name: "background", group: "background", argv: []string{"sleep", "100"}, state: StateBackground, spawned: true},
		{name: "unknown group", group: "cached", argv: []string{"sleep"}, wantErr: ErrUnknownGroup},
		{name: "empty group", group: "", argv: []string{"sleep"}, wantErr: ErrUnknownGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := &fakeSpawner{nextPID: 100}
			g := New(sp, newFakeProber(), 16, nil)
			rec, err := g.Launch(tt.group, tt.argv, time.Now())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Launch() error = %v, want %v", err, tt.wantErr)
				}
				if sp.calls != 0 {
					t.Fatal("spawner called for rejected group")
				}
				if g.Len() != 0 {
					t.Fatal("registry mutated on rejected launch")
				}
				return
			}
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if !tt.spawned || sp.calls != 1 {
				t.Fatalf("spawner calls = %d, want 1", sp.calls)
			}
			if rec.State != tt.state {
				t.Fatalf("initial state = %v, want %v", rec.State, tt.state)
			}
			if !rec.Launched() {
				t.Fatal("record not marked launched")
			}
		})
	}
}

func TestLaunchSpawnFailureLeavesRegistryUntouched(t *testing.T) {
	sp := &fakeSpawner{err: errors.New("executable not found")}
	g := New(sp, newFakeProber(), 16, nil)
	if _, err := g.Launch("foreground", []string{"nope"}, time.Now()); err == nil {
		t.Fatal("expected spawn error")
	}
	if g.Len() != 0 {
		t.Fatalf("registry len = %d, want 0", g.Len())
	}
}

func TestLaunchCapacity(t *testing.T) {
	sp := &fakeSpawner{nextPID: 100}
	g := New(sp, newFakeProber(), 1, nil)
	if _, err := g.Launch("background", []string{"a"}, time.Now()); err != nil {
		t.Fatalf("first launch: %v", err)
	}
	_, err := g.Launch("background", []string{"b"}, time.Now())
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("error = %v, want ErrCapacity", err)
	}
	if sp.calls != 1 {
		t.Fatalf("spawner called %d times, want 1 (no spawn past capacity)", sp.calls)
	}
}

func TestAttachExisting(t *testing.T) {
	p := newFakeProber(1, 2, 3)
	g := New(&fakeSpawner{}, p, 16, nil)
	if n := g.AttachExisting(time.Now()); n != 3 {
		t.Fatalf("attached = %d, want 3", n)
	}
	// Attaching again must not duplicate.
	if n := g.AttachExisting(time.Now()); n != 0 {
		t.Fatalf("second attach = %d, want 0", n)
	}
	for _, rec := range g.All() {
		if rec.State != StateBackground {
			t.Fatalf("attached state = %v, want background", rec.State)
		}
		if rec.Launched() {
			t.Fatal("attached record marked launched")
		}
	}
}

func TestAttachRespectsCapacity(t *testing.T) {
	p := newFakeProber(1, 2, 3, 4, 5)
	g := New(&fakeSpawner{}, p, 2, nil)
	if n := g.AttachExisting(time.Now()); n != 2 {
		t.Fatalf("attached = %d, want 2", n)
	}
	if g.Len() != 2 {
		t.Fatalf("len = %d, want 2", g.Len())
	}
}

func TestReapRemovesExactlyDead(t *testing.T) {
	p := newFakeProber(1, 2, 3, 4, 5)
	g := New(&fakeSpawner{}, p, 16, nil)
	g.AttachExisting(time.Now())

	p.dead[2] = true
	p.dead[5] = true
	dead := g.Reap()
	if len(dead) != 2 {
		t.Fatalf("reaped = %d, want 2", len(dead))
	}
	if g.Len() != 3 {
		t.Fatalf("remaining = %d, want 3", g.Len())
	}
	for _, pid := range []int32{1, 3, 4} {
		if g.FindByPID(pid) == nil {
			t.Fatalf("live pid %d was removed", pid)
		}
	}
	for _, pid := range []int32{2, 5} {
		if g.FindByPID(pid) != nil {
			t.Fatalf("dead pid %d still tracked", pid)
		}
	}
}

func TestSetRequestedPriority(t *testing.T) {
	p := newFakeProber(7)
	g := New(&fakeSpawner{}, p, 16, nil)
	g.AttachExisting(time.Now())

	tests := []struct {
		name     string
		pid      int32
		priority int
		wantErr  error
	}{
		{name: "valid negative", pid: 7, priority: -20},
		{name: "valid positive", pid: 7, priority: 20},
		{name: "clear", pid: 7, priority: 0},
		{name: "below range", pid: 7, priority: -21, wantErr: ErrPriorityRange},
		{name: "above range", pid: 7, priority: 21, wantErr: ErrPriorityRange},
		{name: "unknown pid", pid: 99, priority: 5, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.SetRequestedPriority(tt.pid, tt.priority)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := g.FindByPID(tt.pid).RequestedPriority; got != tt.priority {
				t.Fatalf("RequestedPriority = %d, want %d", got, tt.priority)
			}
		})
	}
}

func TestOutOfRangePriorityDoesNotMutate(t *testing.T) {
	p := newFakeProber(7)
	g := New(&fakeSpawner{}, p, 16, nil)
	g.AttachExisting(time.Now())
	_ = g.SetRequestedPriority(7, -5)
	if err := g.SetRequestedPriority(7, 40); err == nil {
		t.Fatal("expected range error")
	}
	if got := g.FindByPID(7).RequestedPriority; got != -5 {
		t.Fatalf("RequestedPriority = %d, want -5 (unchanged)", got)
	}
}
