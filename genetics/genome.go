// Package genetics implements heritable genomes: crossover, mutation, and
// derivation of the expressed phenotype.
package genetics

import (
	"math"
	"math/rand"
)

// Gene indices. All genes are stored normalized to [0, 1]; trait bounds from
// the config map them to expressed values.
const (
	GeneVisionRange = iota
	GeneVisionHalfAngle
	GeneMaxSpeed
	GeneMetabolism
	GeneFertility
	GeneSex
	GenePolicySeedA
	GenePolicySeedB
	GeneCount
)

// Genome is a fixed-size vector of normalized genes. It is a value type:
// crossover and mutation return new genomes and never modify their inputs.
type Genome struct {
	genes [GeneCount]float32
}

// NewRandom returns a genome with every gene drawn uniformly from [0, 1).
func NewRandom(rng *rand.Rand) Genome {
	var g Genome
	for i := range g.genes {
		g.genes[i] = rng.Float32()
	}
	return g
}

// FromGenes builds a genome directly from gene values, clamped to [0, 1].
func FromGenes(genes [GeneCount]float32) Genome {
	var g Genome
	for i, v := range genes {
		g.genes[i] = clamp01(v)
	}
	return g
}

// Gene returns the normalized value of gene i.
func (g Genome) Gene(i int) float32 {
	return g.genes[i]
}

// WithGene returns a copy with gene i set to v, clamped to [0, 1].
func (g Genome) WithGene(i int, v float32) Genome {
	g.genes[i] = clamp01(v)
	return g
}

// Female reports the sex expressed by the sex gene. Fixed for the
// organism's lifetime since genomes are immutable.
func (g Genome) Female() bool {
	return g.genes[GeneSex] < 0.5
}

// Crossover combines two parent genomes: each gene is taken whole from one
// parent or the other with equal probability.
func Crossover(a, b Genome, rng *rand.Rand) Genome {
	var child Genome
	for i := range child.genes {
		if rng.Float32() < 0.5 {
			child.genes[i] = a.genes[i]
		} else {
			child.genes[i] = b.genes[i]
		}
	}
	return child
}

// Mutate returns a copy of the genome where each gene, with probability rate,
// has Gaussian noise of the given magnitude added. Results are clamped back
// to [0, 1].
func (g Genome) Mutate(rate, magnitude float64, rng *rand.Rand) Genome {
	out := g
	for i := range out.genes {
		if rng.Float64() < rate {
			out.genes[i] = clamp01(out.genes[i] + float32(rng.NormFloat64()*magnitude))
		}
	}
	return out
}

// PolicySeed derives a deterministic RNG seed from the policy-seed genes, so
// fresh policy weights are a pure function of the genome.
func (g Genome) PolicySeed() int64 {
	a := uint64(math.Float32bits(g.genes[GenePolicySeedA]))
	b := uint64(math.Float32bits(g.genes[GenePolicySeedB]))
	return int64(a ^ (b << 29) ^ 0x9e3779b97f4a7c15)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
