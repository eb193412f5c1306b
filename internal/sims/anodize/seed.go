package anodize

import pcore "anodize-ca/pkg/core"

// seedLattice builds the initial conditions: solvent everywhere, a metal slab
// below MetalThickness, oxide nucleation sites in the band
// [MetalThickness, Height), then the explicit sites.
func seedLattice(l *Lattice, cfg Config, seed int64) {
	l.cur.Fill(uint8(Solvent))
	l.nxt.Fill(uint8(Solvent))
	clear(l.claims)
	l.epoch = 1

	size := l.Size()
	sd := cfg.Seeding
	src := pcore.NewSource(seed)

	top := sd.Height
	if top > size.Z {
		top = size.Z
	}
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				switch {
				case z < sd.MetalThickness:
					l.setCurrent(x, y, z, Metal)
				case z < top && seedsOxide(sd, src, x, y, z):
					l.setCurrent(x, y, z, Oxide)
				}
			}
		}
	}
	for _, c := range sd.Sites {
		l.setCurrent(c.X, c.Y, c.Z, Oxide)
	}
}

func seedsOxide(sd Seeding, src pcore.Source, x, y, z int) bool {
	switch sd.Pattern {
	case SeedLattice:
		return x%sd.Spacing == 0 && y%sd.Spacing == 0 && z%sd.Spacing == 0
	case SeedRandom:
		return src.Float64(pcore.StreamSeeding, x, y, z, 0) < sd.Density
	}
	return false
}
