package genetics

import "github.com/tetch/pond/config"

// Phenotype holds the expressed traits of an organism, derived from its
// genome once at birth and immutable afterwards.
type Phenotype struct {
	VisionRange     float32 // Perception distance
	VisionHalfAngle float32 // Radians, half the field of view
	MaxSpeed        float32 // Speed clamp
	Metabolism      float32 // Metabolic rate multiplier
	Fertility       float32 // Energy fraction required to reproduce
}

// Derive maps a genome into expressed trait values using the configured
// bounds. Derivation is deterministic: the same genome and bounds always
// produce the same phenotype.
func Derive(g Genome, t config.TraitsConfig) Phenotype {
	return Phenotype{
		VisionRange:     lerpBounds(t.VisionRange, g.Gene(GeneVisionRange)),
		VisionHalfAngle: lerpBounds(t.VisionHalfAngle, g.Gene(GeneVisionHalfAngle)),
		MaxSpeed:        lerpBounds(t.MaxSpeed, g.Gene(GeneMaxSpeed)),
		Metabolism:      lerpBounds(t.Metabolism, g.Gene(GeneMetabolism)),
		Fertility:       lerpBounds(t.Fertility, g.Gene(GeneFertility)),
	}
}

func lerpBounds(b config.Bounds, t float32) float32 {
	return float32(b.Min) + t*float32(b.Max-b.Min)
}
