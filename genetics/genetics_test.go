package genetics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/tetch/pond/config"
)

func TestCrossoverGenesComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewRandom(rng)
	b := NewRandom(rng)

	child := Crossover(a, b, rng)

	for i := 0; i < GeneCount; i++ {
		g := child.Gene(i)
		if g != a.Gene(i) && g != b.Gene(i) {
			t.Errorf("gene %d = %v, matches neither parent (%v, %v)", i, g, a.Gene(i), b.Gene(i))
		}
	}
}

func TestMutateRateZeroIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := NewRandom(rng)

	out := g.Mutate(0, 0.5, rng)

	for i := 0; i < GeneCount; i++ {
		if out.Gene(i) != g.Gene(i) {
			t.Errorf("gene %d changed under zero mutation rate: %v -> %v", i, g.Gene(i), out.Gene(i))
		}
	}
}

func TestMutateDoesNotModifyReceiver(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := NewRandom(rng)
	before := g

	g.Mutate(1.0, 1.0, rng)

	for i := 0; i < GeneCount; i++ {
		if g.Gene(i) != before.Gene(i) {
			t.Fatalf("Mutate modified its receiver at gene %d", i)
		}
	}
}

func TestMutateClampsToUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := NewRandom(rng)

	// Huge magnitude forces excursions past the bounds
	out := g.Mutate(1.0, 100.0, rng)

	for i := 0; i < GeneCount; i++ {
		v := out.Gene(i)
		if v < 0 || v > 1 {
			t.Errorf("gene %d = %v, outside [0,1]", i, v)
		}
	}
}

func TestSexFromGene(t *testing.T) {
	var genes [GeneCount]float32
	genes[GeneSex] = 0.2
	if !FromGenes(genes).Female() {
		t.Error("sex gene below threshold should express female")
	}
	genes[GeneSex] = 0.8
	if FromGenes(genes).Female() {
		t.Error("sex gene above threshold should express male")
	}

	rng := rand.New(rand.NewSource(8))
	g := NewRandom(rng).WithGene(GeneSex, 0.9)
	if g.Female() {
		t.Error("WithGene did not override the sex gene")
	}
}

func TestPolicySeedDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := NewRandom(rng)

	if g.PolicySeed() != g.PolicySeed() {
		t.Error("PolicySeed not deterministic for identical genome")
	}

	other := g.Mutate(1.0, 0.5, rand.New(rand.NewSource(6)))
	if g.PolicySeed() == other.PolicySeed() {
		t.Error("distinct genomes produced identical policy seeds")
	}

	// Both seed genes must reach the fold
	if g.PolicySeed() == g.WithGene(GenePolicySeedA, 0.123).PolicySeed() {
		t.Error("changing seed gene A did not change the policy seed")
	}
	if g.PolicySeed() == g.WithGene(GenePolicySeedB, 0.123).PolicySeed() {
		t.Error("changing seed gene B did not change the policy seed")
	}
}

func TestDerivePhenotype(t *testing.T) {
	traits := config.TraitsConfig{
		VisionRange:     config.Bounds{Min: 40, Max: 220},
		VisionHalfAngle: config.Bounds{Min: 0.35, Max: 2.6},
		MaxSpeed:        config.Bounds{Min: 30, Max: 140},
		Metabolism:      config.Bounds{Min: 0.6, Max: 1.6},
		Fertility:       config.Bounds{Min: 0.45, Max: 0.85},
	}

	tests := []struct {
		name string
		gene float32
		want float32 // expected vision range
	}{
		{"gene at floor", 0.0, 40},
		{"gene at ceiling", 1.0, 220},
		{"gene midpoint", 0.5, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var genes [GeneCount]float32
			genes[GeneVisionRange] = tt.gene
			p := Derive(FromGenes(genes), traits)
			if math.Abs(float64(p.VisionRange-tt.want)) > 0.001 {
				t.Errorf("VisionRange = %v, want %v", p.VisionRange, tt.want)
			}
		})
	}

	// Determinism: same genome, same phenotype
	rng := rand.New(rand.NewSource(7))
	g := NewRandom(rng)
	if Derive(g, traits) != Derive(g, traits) {
		t.Error("Derive not deterministic for identical genome")
	}
}
