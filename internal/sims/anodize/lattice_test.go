package anodize

import (
	"errors"
	"slices"
	"testing"

	"anodize-ca/internal/core"
)

func TestPartitionClassesHaveDisjointNeighborhoods(t *testing.T) {
	for x := 1; x <= 8; x++ {
		for y := 1; y <= 8; y++ {
			g := core.NewByteGrid3(x, y, 7)
			s := buildSchedule(g)
			if s.sites() != x*y*5 {
				t.Fatalf("%dx%d: scheduled %d sites, want %d", x, y, s.sites(), x*y*5)
			}
			seen := make(map[int]bool)
			for _, class := range s.classes {
				owner := make(map[int]int32)
				for _, site := range class {
					sx, sy, sz := g.Coord(int(site))
					if seen[int(site)] {
						t.Fatalf("%dx%d: site %d scheduled twice", x, y, site)
					}
					seen[int(site)] = true
					for dx := -1; dx <= 1; dx++ {
						for dy := -1; dy <= 1; dy++ {
							for dz := -1; dz <= 1; dz++ {
								nz := sz + dz
								if nz < 0 || nz >= g.Z {
									continue
								}
								nx, ny := g.Wrap(sx+dx, sy+dy)
								cell := g.Index(nx, ny, nz)
								if prev, ok := owner[cell]; ok && prev != site {
									t.Fatalf("%dx%d: sites %d and %d share cell %d", x, y, prev, site, cell)
								}
								owner[cell] = site
							}
						}
					}
				}
			}
		}
	}
}

func TestPeriodicColors(t *testing.T) {
	colors, n := periodicColors(7)
	if n != 4 || !slices.Equal(colors, []int{0, 1, 2, 0, 1, 2, 3}) {
		t.Fatalf("colors %v (%d)", colors, n)
	}
	colors, n = periodicColors(2)
	if n != 2 || !slices.Equal(colors, []int{0, 1}) {
		t.Fatalf("colors %v (%d)", colors, n)
	}
}

func TestCommitSwapsAndResyncs(t *testing.T) {
	l := NewLattice(core.Size{X: 3, Y: 3, Z: 3})
	l.WriteNext(1, 1, 1, Oxide)
	if l.Read(1, 1, 1) != Solvent {
		t.Fatal("next buffer write leaked into current")
	}
	l.Commit()
	if l.Read(1, 1, 1) != Oxide {
		t.Fatal("commit did not publish the write")
	}
	// Untouched sites carry over into the following step.
	l.Commit()
	if l.Read(1, 1, 1) != Oxide {
		t.Fatal("second commit lost the cell")
	}
	l.WriteNext(0, 0, 0, Metal)
	l.Discard()
	l.Commit()
	if l.Read(0, 0, 0) != Solvent {
		t.Fatal("discarded write survived")
	}
}

func TestClaimsExpireWithEpoch(t *testing.T) {
	l := NewLattice(core.Size{X: 2, Y: 2, Z: 2})
	l.claim(3)
	if !l.claimed(3) || l.claimed(2) {
		t.Fatal("claim not recorded")
	}
	l.Commit()
	if l.claimed(3) {
		t.Fatal("claim survived the commit")
	}
}

func TestCountByStateReportsCorruption(t *testing.T) {
	l := NewLattice(core.Size{X: 2, Y: 3, Z: 4})
	l.setCurrent(1, 2, 3, CellState(200))
	_, err := l.CountByState(7)
	var ce *CorruptionError
	if !errors.As(err, &ce) || ce.X != 1 || ce.Y != 2 || ce.Z != 3 || ce.Step != 7 {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSliceOrientation(t *testing.T) {
	l := NewLattice(core.Size{X: 4, Y: 3, Z: 5})
	l.setCurrent(3, 2, 4, Anion)

	p, err := l.Slice(AxisZ, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.W != 4 || p.H != 3 || p.At(3, 2) != Anion {
		t.Fatalf("z slice %dx%d at(3,2)=%s", p.W, p.H, p.At(3, 2))
	}
	p, _ = l.Slice(AxisY, 2)
	if p.W != 4 || p.H != 5 || p.At(3, 4) != Anion {
		t.Fatalf("y slice %dx%d at(3,4)=%s", p.W, p.H, p.At(3, 4))
	}
	p, _ = l.Slice(AxisX, 3)
	if p.W != 3 || p.H != 5 || p.At(2, 4) != Anion {
		t.Fatalf("x slice %dx%d at(2,4)=%s", p.W, p.H, p.At(2, 4))
	}
	rows := p.Rows()
	if len(rows) != 5 || rows[0] != "..a" || rows[4] != "..." {
		t.Fatalf("rows %q", rows)
	}
}

func TestVolumeIsACopy(t *testing.T) {
	l := NewLattice(core.Size{X: 2, Y: 2, Z: 2})
	v := l.Volume()
	v.Cells[0] = Metal
	if l.Read(0, 0, 0) != Solvent {
		t.Fatal("volume shares storage with the lattice")
	}
	l.setCurrent(1, 0, 1, Oxide)
	if l.Volume().At(1, 0, 1) != Oxide {
		t.Fatal("Volume.At indexes the wrong cell")
	}
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]Axis{"x": AxisX, "Y": AxisY, "z": AxisZ} {
		got, err := ParseAxis(in)
		if err != nil || got != want {
			t.Fatalf("ParseAxis(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAxis("w"); !errors.Is(err, ErrInvalidAxis) {
		t.Fatalf("expected ErrInvalidAxis, got %v", err)
	}
}

func TestSeedLatticePattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = core.Size{X: 9, Y: 9, Z: 12}
	l := NewLattice(cfg.Size)
	seedLattice(l, cfg, cfg.Seed)

	for _, tc := range []struct {
		c    Coord
		want CellState
	}{
		{Coord{0, 0, 0}, Metal},
		{Coord{8, 8, 4}, Metal},
		{Coord{0, 0, 6}, Oxide},
		{Coord{3, 6, 9}, Oxide},
		{Coord{1, 0, 6}, Solvent},
		{Coord{0, 0, 5}, Solvent},
		{Coord{0, 0, 11}, Solvent},
	} {
		if got := l.Read(tc.c.X, tc.c.Y, tc.c.Z); got != tc.want {
			t.Fatalf("%v = %s, want %s", tc.c, got, tc.want)
		}
	}
	counts, err := l.CountByState(0)
	if err != nil {
		t.Fatal(err)
	}
	if counts[Metal] != 9*9*5 || counts[Oxide] != 3*3*2 {
		t.Fatalf("counts %v", counts)
	}
}

func TestSeedRandomPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = core.Size{X: 6, Y: 6, Z: 10}
	cfg.Seeding.Pattern = SeedRandom
	cfg.Seeding.MetalThickness = 2
	cfg.Seeding.Height = 20

	cfg.Seeding.Density = 1
	l := NewLattice(cfg.Size)
	seedLattice(l, cfg, 5)
	counts, _ := l.CountByState(0)
	if counts[Oxide] != 6*6*8 {
		t.Fatalf("density 1 seeded %d oxide cells", counts[Oxide])
	}

	cfg.Seeding.Density = 0
	seedLattice(l, cfg, 5)
	counts, _ = l.CountByState(0)
	if counts[Oxide] != 0 || counts[Metal] != 6*6*2 {
		t.Fatalf("density 0 counts %v", counts)
	}

	cfg.Seeding.Density = 0.5
	seedLattice(l, cfg, 5)
	a := l.Volume()
	seedLattice(l, cfg, 5)
	if !slices.Equal(a.Cells, l.Volume().Cells) {
		t.Fatal("same seed produced different initial conditions")
	}
	seedLattice(l, cfg, 6)
	if slices.Equal(a.Cells, l.Volume().Cells) {
		t.Fatal("different seeds produced identical initial conditions")
	}
}

func TestSeedExplicitSites(t *testing.T) {
	cfg := emptyConfig(4, 4, 4)
	cfg.Seeding.Sites = []Coord{{X: 1, Y: 2, Z: 3}}
	s := mustNew(t, cfg)
	if got, _ := s.State(1, 2, 3); got != Oxide {
		t.Fatalf("explicit site = %s, want oxide", got)
	}
	counts, err := s.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if counts[Oxide] != 1 || counts[Solvent] != 63 {
		t.Fatalf("counts %v", counts)
	}
}

func TestParseSlice(t *testing.T) {
	cases := []struct {
		in    string
		axis  Axis
		index int
	}{
		{"y=25", AxisY, 25},
		{"xz=3", AxisY, 3},
		{"XY = 7", AxisZ, 7},
		{"yz=0", AxisX, 0},
	}
	for _, tc := range cases {
		axis, index, err := ParseSlice(tc.in)
		if err != nil || axis != tc.axis || index != tc.index {
			t.Fatalf("ParseSlice(%q) = %s, %d, %v", tc.in, axis, index, err)
		}
	}
	for _, bad := range []string{"y", "w=1", "z=top"} {
		if _, _, err := ParseSlice(bad); !errors.Is(err, ErrInvalidAxis) {
			t.Fatalf("ParseSlice(%q) error %v", bad, err)
		}
	}
	if axis, index := DefaultSlice(core.Size{X: 50, Y: 50, Z: 100}); axis != AxisY || index != 25 {
		t.Fatalf("default slice %s=%d", axis, index)
	}
}
