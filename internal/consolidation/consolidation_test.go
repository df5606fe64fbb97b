package consolidation

import (
	"math/rand"
	"testing"

	"github.com/engramhq/engram/internal/model"
)

func defaultParams() Params {
	return Params{
		Mu1: 0.15, Mu2: 0.005, Alpha: 0.08,
		InterleaveRatio: 0.3, ReplayBoost: 0.01,
		PromoteThreshold: 0.25, DemoteThreshold: 0.05, ArchiveThreshold: 0.15,
	}
}

func TestStepSkipsPinned(t *testing.T) {
	e := &model.Entry{Pinned: true, WorkingStrength: 1.0, CoreStrength: 0.0}
	Step(e, 1.0, defaultParams())
	if e.WorkingStrength != 1.0 || e.CoreStrength != 0.0 {
		t.Error("expected pinned entry to be untouched by Step")
	}
}

func TestStepTransfersToCoreAndDecaysWorking(t *testing.T) {
	e := &model.Entry{WorkingStrength: 1.0, CoreStrength: 0.0, Importance: 0.9}
	Step(e, 1.0, defaultParams())

	if e.CoreStrength <= 0 {
		t.Errorf("expected core strength to grow, got %v", e.CoreStrength)
	}
	if e.WorkingStrength >= 1.0 {
		t.Errorf("expected working strength to decay, got %v", e.WorkingStrength)
	}
	if e.ConsolidationCount != 1 {
		t.Errorf("expected consolidation count 1, got %d", e.ConsolidationCount)
	}
}

func TestRepeatedStepsPromoteImportantEntry(t *testing.T) {
	e := &model.Entry{WorkingStrength: 1.0, CoreStrength: 0.0, Importance: 0.9, Layer: model.LayerWorking}
	p := defaultParams()

	promotedAtCycle := -1
	for i := 1; i <= 7; i++ {
		Step(e, 1.0, p)
		layer := Rebalance(e, p)
		if layer == model.LayerCore {
			promotedAtCycle = i
			break
		}
	}
	if promotedAtCycle == -1 {
		t.Fatal("expected entry to be promoted within 7 cycles")
	}
}

func TestReplayIncreasesCoreStrength(t *testing.T) {
	e := &model.Entry{Importance: 0.5, CoreStrength: 0.1}
	before := e.CoreStrength
	Replay(e, 0.01)
	if e.CoreStrength <= before {
		t.Errorf("expected core strength to increase, got %v -> %v", before, e.CoreStrength)
	}
}

func TestSampleReplaySetSizeMatchesRatio(t *testing.T) {
	archived := make([]*model.Entry, 10)
	for i := range archived {
		archived[i] = &model.Entry{ID: string(rune('a' + i))}
	}
	rng := rand.New(rand.NewSource(42))
	sample := SampleReplaySet(archived, 0.3, rng)
	if len(sample) != 3 {
		t.Errorf("expected 3, got %d", len(sample))
	}
}

func TestSampleReplaySetFloorsToOneWithSmallArchive(t *testing.T) {
	archived := []*model.Entry{{ID: "only"}}
	rng := rand.New(rand.NewSource(1))
	sample := SampleReplaySet(archived, 0.3, rng)
	if len(sample) != 1 {
		t.Fatalf("expected a single archived entry to still replay, got %d", len(sample))
	}
	if sample[0].ID != "only" {
		t.Errorf("expected the sole archived entry, got %q", sample[0].ID)
	}
}

func TestRebalancePromoteDemoteArchive(t *testing.T) {
	p := defaultParams()

	promote := &model.Entry{Layer: model.LayerWorking, CoreStrength: 0.3}
	if got := Rebalance(promote, p); got != model.LayerCore {
		t.Errorf("expected promotion to core, got %v", got)
	}

	archive := &model.Entry{Layer: model.LayerWorking, WorkingStrength: 0.1, CoreStrength: 0.1}
	if got := Rebalance(archive, p); got != model.LayerArchive {
		t.Errorf("expected archival, got %v", got)
	}

	demote := &model.Entry{Layer: model.LayerCore, WorkingStrength: 0.01, CoreStrength: 0.01}
	if got := Rebalance(demote, p); got != model.LayerArchive {
		t.Errorf("expected demotion to archive, got %v", got)
	}
}

func TestRebalancePinnedAlwaysCore(t *testing.T) {
	e := &model.Entry{Pinned: true, Layer: model.LayerArchive, WorkingStrength: 0, CoreStrength: 0}
	if got := Rebalance(e, defaultParams()); got != model.LayerCore {
		t.Errorf("expected pinned entry forced to core, got %v", got)
	}
}

func TestDownscaleSkipsPinned(t *testing.T) {
	pinned := &model.Entry{Pinned: true, WorkingStrength: 1.0, CoreStrength: 1.0}
	Downscale(pinned, 0.5)
	if pinned.WorkingStrength != 1.0 || pinned.CoreStrength != 1.0 {
		t.Error("expected pinned entry untouched by downscale")
	}

	e := &model.Entry{WorkingStrength: 1.0, CoreStrength: 1.0}
	Downscale(e, 0.5)
	if e.WorkingStrength != 0.5 || e.CoreStrength != 0.5 {
		t.Errorf("expected halved strengths, got %v %v", e.WorkingStrength, e.CoreStrength)
	}
}
