package catalog

import (
	"slices"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
)

// Snapshot is an immutable, in-memory view of one user's catalog. It is safe
// for concurrent reads.
type Snapshot struct {
	tasks     []Task
	materials []Material
	areas     []Area
	rates     []Rate
	kits      []Kit

	taskByID     map[string]int
	materialByID map[string]int
	kitByID      map[string]int

	templates []pricing.RateTemplate
}

// NewSnapshot copies the given records and indexes them by id. Order is kept.
func NewSnapshot(tasks []Task, materials []Material, areas []Area, rates []Rate, kits []Kit) *Snapshot {
	s := &Snapshot{
		tasks:        slices.Clone(tasks),
		materials:    make([]Material, len(materials)),
		areas:        slices.Clone(areas),
		rates:        slices.Clone(rates),
		kits:         make([]Kit, len(kits)),
		taskByID:     make(map[string]int, len(tasks)),
		materialByID: make(map[string]int, len(materials)),
		kitByID:      make(map[string]int, len(kits)),
		templates:    make([]pricing.RateTemplate, len(rates)),
	}

	for i, t := range s.tasks {
		s.taskByID[t.ID] = i
	}
	for i, m := range materials {
		m.Options = slices.Clone(m.Options)
		s.materials[i] = m
		s.materialByID[m.ID] = i
	}
	for i, k := range kits {
		k.Lines = slices.Clone(k.Lines)
		s.kits[i] = k
		s.kitByID[k.ID] = i
	}
	for i, r := range s.rates {
		s.templates[i] = r.RateTemplate
	}

	return s
}

func (s *Snapshot) Task(id string) (Task, bool) {
	i, ok := s.taskByID[id]
	if !ok {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Snapshot) Material(id string) (Material, bool) {
	i, ok := s.materialByID[id]
	if !ok {
		return Material{}, false
	}
	m := s.materials[i]
	m.Options = slices.Clone(m.Options)
	return m, true
}

func (s *Snapshot) Kit(id string) (Kit, bool) {
	i, ok := s.kitByID[id]
	if !ok {
		return Kit{}, false
	}
	k := s.kits[i]
	k.Lines = slices.Clone(k.Lines)
	return k, true
}

func (s *Snapshot) Tasks() []Task { return slices.Clone(s.tasks) }

func (s *Snapshot) Materials() []Material {
	out := make([]Material, len(s.materials))
	for i, m := range s.materials {
		m.Options = slices.Clone(m.Options)
		out[i] = m
	}
	return out
}

func (s *Snapshot) Areas() []Area { return slices.Clone(s.areas) }

func (s *Snapshot) Kits() []Kit {
	out := make([]Kit, len(s.kits))
	for i, k := range s.kits {
		k.Lines = slices.Clone(k.Lines)
		out[i] = k
	}
	return out
}

// RateRecords returns the stored rates with their ids.
func (s *Snapshot) RateRecords() []Rate { return slices.Clone(s.rates) }

// Rates returns the rate templates in source order, ready for pricing.ResolveRate.
func (s *Snapshot) Rates() []pricing.RateTemplate { return slices.Clone(s.templates) }

// View is the JSON shape of a snapshot.
type View struct {
	Tasks     []Task     `json:"tasks"`
	Materials []Material `json:"materials"`
	Areas     []Area     `json:"areas"`
	Rates     []Rate     `json:"rates"`
	Kits      []Kit      `json:"kits"`
}

func (s *Snapshot) View() View {
	return View{
		Tasks:     s.Tasks(),
		Materials: s.Materials(),
		Areas:     s.Areas(),
		Rates:     s.RateRecords(),
		Kits:      s.Kits(),
	}
}
