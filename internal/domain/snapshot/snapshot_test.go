package snapshot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/lapmatch/internal/domain"
	"github.com/kailas-cloud/lapmatch/internal/domain/catalog"
	"github.com/kailas-cloud/lapmatch/internal/domain/cluster"
	"github.com/kailas-cloud/lapmatch/internal/domain/feature"
)

func makeItems(n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Reconstruct(fmt.Sprintf("id-%d", i), catalog.Attributes{
			Price:       float64(30000 + i*5000),
			RAMGB:       float64(int(8) << (i % 3)),
			Performance: float64(i * 7 % 100),
			Portability: float64(100 - i*3%100),
		})
	}
	return out
}

func TestBuild_AnnotatesEveryItem(t *testing.T) {
	snap, err := Build(makeItems(30), feature.DefaultSpecs(), cluster.Options{K: 4, Seed: 42}, Meta{Version: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Len() != 30 {
		t.Fatalf("Len() = %d", snap.Len())
	}
	total := 0
	for _, s := range snap.ClusterSizes() {
		total += s
	}
	if total != 30 {
		t.Errorf("cluster sizes sum to %d, want 30", total)
	}
	for _, it := range snap.Items() {
		if it.ClusterID() < 0 || it.ClusterID() >= 4 {
			t.Errorf("item %s cluster %d out of range", it.ID(), it.ClusterID())
		}
	}
	if len(snap.Vector(0)) != len(feature.DefaultSpecs()) {
		t.Errorf("vector length = %d", len(snap.Vector(0)))
	}
	if snap.Meta().Version != 1 {
		t.Errorf("Version = %d", snap.Meta().Version)
	}
}

func TestBuild_SameInputSameClusters(t *testing.T) {
	a, _ := Build(makeItems(50), feature.DefaultSpecs(), cluster.Options{K: 5, Seed: 42}, Meta{})
	b, _ := Build(makeItems(50), feature.DefaultSpecs(), cluster.Options{K: 5, Seed: 42}, Meta{})
	for i := range a.Items() {
		if a.Items()[i].ClusterID() != b.Items()[i].ClusterID() {
			t.Fatalf("item %d: cluster %d vs %d", i, a.Items()[i].ClusterID(), b.Items()[i].ClusterID())
		}
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	items := makeItems(3)
	items[2] = catalog.Reconstruct("id-0", catalog.Attributes{})
	_, err := Build(items, feature.DefaultSpecs(), cluster.Options{K: 2}, Meta{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBuild_UnknownFeature(t *testing.T) {
	_, err := Build(makeItems(3), []feature.Spec{{Name: "colour", Weight: 1}}, cluster.Options{K: 2}, Meta{})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestItem_Lookup(t *testing.T) {
	snap, _ := Build(makeItems(5), feature.DefaultSpecs(), cluster.Options{K: 2}, Meta{})
	it, err := snap.Item("id-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID() != "id-3" {
		t.Errorf("ID() = %q", it.ID())
	}
	if _, err := snap.Item("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBuild_CountsMalformed(t *testing.T) {
	items := makeItems(4)
	items[1] = items[1].WithMalformed()
	snap, _ := Build(items, feature.DefaultSpecs(), cluster.Options{K: 2}, Meta{})
	if snap.Malformed() != 1 {
		t.Errorf("Malformed() = %d, want 1", snap.Malformed())
	}
}
