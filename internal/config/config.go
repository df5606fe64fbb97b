// Package config holds Engram's tunable parameters and the preset bundles
// named in spec.md §6. Defaults come from the cited neuroscience literature
// (ACT-R, the Memory-Chain model, Ebbinghaus) by way of the original
// implementation's config.py, not from tuning against any corpus.
package config

import "github.com/engramhq/engram/internal/engramerr"

// Config bundles every tunable parameter across Engram's components.
type Config struct {
	// Forgetting (§4.4)
	SpacingFactor       float64
	ImportanceFloor     float64
	ConsolidationBonus  float64
	ForgetThreshold     float64
	SuppressionFactor   float64
	OverlapThreshold    float64
	SuppressAllReturned bool // open question: extend RIF beyond the top result

	// Consolidation (§4.3)
	Mu1                           float64
	Mu2                           float64
	Alpha                         float64
	ConsolidationImportanceFloor  float64
	InterleaveRatio               float64
	ReplayBoost                   float64
	PromoteThreshold              float64
	DemoteThreshold               float64
	ArchiveThreshold              float64
	DownscaleFactor               float64

	// Activation (§4.2)
	ActRDecay         float64
	ContextWeight     float64
	ImportanceWeight  float64
	MinActivation     float64

	// Confidence (§4.5.2)
	DefaultReliability           map[string]float64
	ConfidenceReliabilityWeight  float64
	ConfidenceSalienceWeight     float64
	SalienceSigmoidK             float64

	// Reward (§4.6)
	RewardMagnitude        float64
	RewardRecentN          int
	RewardStrengthBoost    float64
	RewardSuppression      float64
	RewardTemporalDiscount float64

	// Anomaly (§4.7)
	AnomalyWindowSize    int
	AnomalySigmaThresh   float64
	AnomalyMinSamples    int

	// Session working memory (§4.8)
	SessionCapacity   int
	SessionDecaySecs  float64
	SessionOverlapMin float64

	// Recall orchestration (§4.2, §4.5, §9 defaults)
	RecallDefaultLimit int
	FTSCandidateLimit  int
	GraphExpandHops    int
	HebbianCeiling     float64
}

func defaultReliability() map[string]float64 {
	return map[string]float64{
		"factual":    0.85,
		"episodic":   0.90,
		"relational": 0.75,
		"emotional":  0.95,
		"procedural": 0.90,
		"opinion":    0.60,
	}
}

// Default returns the literature-grounded defaults (spec.md §4 throughout).
func Default() Config {
	return Config{
		SpacingFactor:      0.5,
		ImportanceFloor:    0.5,
		ConsolidationBonus: 0.2,
		ForgetThreshold:    0.01,
		SuppressionFactor:  0.05,
		OverlapThreshold:   0.3,

		Mu1:                          0.15,
		Mu2:                          0.005,
		Alpha:                        0.08,
		ConsolidationImportanceFloor: 0.2,
		InterleaveRatio:              0.3,
		ReplayBoost:                  0.01,
		PromoteThreshold:             0.25,
		DemoteThreshold:              0.05,
		ArchiveThreshold:             0.15,
		DownscaleFactor:              0.95,

		ActRDecay:        0.5,
		ContextWeight:    1.5,
		ImportanceWeight: 0.5,
		MinActivation:    -10.0,

		DefaultReliability:          defaultReliability(),
		ConfidenceReliabilityWeight: 0.7,
		ConfidenceSalienceWeight:    0.3,
		SalienceSigmoidK:            2.0,

		RewardMagnitude:        0.15,
		RewardRecentN:          3,
		RewardStrengthBoost:    0.05,
		RewardSuppression:      0.1,
		RewardTemporalDiscount: 0.5,

		AnomalyWindowSize:  100,
		AnomalySigmaThresh: 2.0,
		AnomalyMinSamples:  5,

		SessionCapacity:   7,
		SessionDecaySecs:  300,
		SessionOverlapMin: 0.6,

		RecallDefaultLimit: 5,
		FTSCandidateLimit:  200,
		GraphExpandHops:    2,
		HebbianCeiling:     10.0,
	}
}

// Chatbot is tuned for conversational agents: high replay, slow decay, so
// long conversations retain earlier context.
func Chatbot() Config {
	c := Default()
	c.Mu1 = 0.08
	c.Mu2 = 0.003
	c.Alpha = 0.12
	c.InterleaveRatio = 0.4
	c.ReplayBoost = 0.015
	c.ActRDecay = 0.4
	c.ContextWeight = 2.0
	c.DownscaleFactor = 0.96
	c.RewardMagnitude = 0.2
	c.ForgetThreshold = 0.005
	return c
}

// TaskAgent is tuned for short-lived task agents: fast decay, low replay.
func TaskAgent() Config {
	c := Default()
	c.Mu1 = 0.25
	c.Mu2 = 0.01
	c.Alpha = 0.05
	c.InterleaveRatio = 0.1
	c.ReplayBoost = 0.005
	c.ActRDecay = 0.6
	c.PromoteThreshold = 0.35
	c.ArchiveThreshold = 0.2
	c.DownscaleFactor = 0.90
	c.ForgetThreshold = 0.02
	return c
}

// PersonalAssistant is tuned for long-term personal assistants: very slow
// core decay, medium replay.
func PersonalAssistant() Config {
	c := Default()
	c.Mu1 = 0.12
	c.Mu2 = 0.001
	c.Alpha = 0.10
	c.InterleaveRatio = 0.3
	c.ReplayBoost = 0.02
	c.ActRDecay = 0.45
	c.ImportanceWeight = 0.7
	c.PromoteThreshold = 0.20
	c.DemoteThreshold = 0.03
	c.DownscaleFactor = 0.97
	c.ForgetThreshold = 0.005
	c.ConfidenceReliabilityWeight = 0.8
	c.ConfidenceSalienceWeight = 0.2
	return c
}

// Researcher is tuned for research agents: minimal forgetting, heavy
// replay, since anything might be relevant later.
func Researcher() Config {
	c := Default()
	c.Mu1 = 0.05
	c.Mu2 = 0.001
	c.Alpha = 0.15
	c.InterleaveRatio = 0.5
	c.ReplayBoost = 0.025
	c.ActRDecay = 0.35
	c.ContextWeight = 2.0
	c.ImportanceWeight = 0.3
	c.PromoteThreshold = 0.15
	c.DemoteThreshold = 0.02
	c.ArchiveThreshold = 0.10
	c.DownscaleFactor = 0.98
	c.ForgetThreshold = 0.001
	return c
}

// Validate enforces the out-of-range checks spec.md §7 assigns to
// ConfigError (e.g. a downscale factor outside (0,1]).
func (c Config) Validate() error {
	if c.DownscaleFactor <= 0 || c.DownscaleFactor > 1 {
		return engramerr.Config("DownscaleFactor", "must be in (0, 1]")
	}
	if c.Mu1 < 0 || c.Mu2 < 0 || c.Alpha < 0 {
		return engramerr.Config("Mu1/Mu2/Alpha", "must be non-negative")
	}
	if c.SessionCapacity <= 0 {
		return engramerr.Config("SessionCapacity", "must be positive")
	}
	if c.SessionDecaySecs < 0 {
		return engramerr.Config("SessionDecaySecs", "must be non-negative")
	}
	if c.ConfidenceReliabilityWeight+c.ConfidenceSalienceWeight == 0 {
		return engramerr.Config("ConfidenceReliabilityWeight+ConfidenceSalienceWeight", "must not both be zero")
	}
	return nil
}
