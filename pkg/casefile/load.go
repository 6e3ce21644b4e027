package casefile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// LoadFile reads and strictly decodes a single case file, then validates
// its referential integrity.
func LoadFile(path string) (*CaseDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file %s: %w", path, err)
	}

	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	var c CaseDefinition
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode case file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid case file %s: %w", path, err)
	}

	return &c, nil
}

// LoadDir loads every .json case file in a directory, keyed by case ID.
func LoadDir(dir string) (map[string]*CaseDefinition, error) {
	cases := make(map[string]*CaseDefinition)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		c, err := LoadFile(path)
		if err != nil {
			return err
		}
		if _, exists := cases[c.ID]; exists {
			return fmt.Errorf("duplicate case id %q in %s", c.ID, path)
		}
		cases[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cases from %s: %w", dir, err)
	}

	if len(cases) == 0 {
		return nil, fmt.Errorf("no case files found in %s", dir)
	}
	return cases, nil
}

// Validate checks internal consistency: required fields, ID formats, and
// that every cross-reference resolves to an entity in the case.
func (c *CaseDefinition) Validate() error {
	var errs []string
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if c.ID == "" {
		report("case id is required")
	} else if !idPattern.MatchString(c.ID) {
		report("case id %q must be lowercase kebab-case", c.ID)
	}
	if c.Title == "" {
		report("case title is required")
	}
	if c.Synopsis == "" {
		report("case synopsis is required")
	}
	if c.Setting == "" {
		report("case setting is required")
	}
	if len(c.NPCs) == 0 {
		report("case must define at least one npc")
	}
	if len(c.Locations) == 0 {
		report("case must define at least one location")
	}
	if c.Solution == "" && len(c.Suspects) == 0 {
		report("case must define either a solution or suspects")
	}
	if c.CoherenceThreshold < 0 || c.CoherenceThreshold > 100 {
		report("coherence_threshold %d must be within 0-100", c.CoherenceThreshold)
	}

	npcIDs := make(map[string]bool, len(c.NPCs))
	for _, n := range c.NPCs {
		if !idPattern.MatchString(n.ID) {
			report("npc id %q must be lowercase kebab-case", n.ID)
		}
		if npcIDs[n.ID] {
			report("duplicate npc id %q", n.ID)
		}
		npcIDs[n.ID] = true
		if n.TrustLevel < 0 || n.TrustLevel > 100 {
			report("npc %q trust_level %d must be within 0-100", n.ID, n.TrustLevel)
		}
	}

	locIDs := make(map[string]bool, len(c.Locations))
	for _, l := range c.Locations {
		if !idPattern.MatchString(l.ID) {
			report("location id %q must be lowercase kebab-case", l.ID)
		}
		if locIDs[l.ID] {
			report("duplicate location id %q", l.ID)
		}
		locIDs[l.ID] = true
	}

	clueIDs := make(map[string]bool, len(c.Clues))
	for _, cl := range c.Clues {
		if !idPattern.MatchString(cl.ID) {
			report("clue id %q must be lowercase kebab-case", cl.ID)
		}
		if clueIDs[cl.ID] {
			report("duplicate clue id %q", cl.ID)
		}
		clueIDs[cl.ID] = true
	}

	for _, n := range c.NPCs {
		if n.LocationID != "" && !locIDs[n.LocationID] {
			report("npc %q references unknown location %q", n.ID, n.LocationID)
		}
		for _, kb := range n.KnowledgeBoundaries {
			if !clueIDs[kb.ClueID] {
				report("npc %q knowledge boundary references unknown clue %q", n.ID, kb.ClueID)
			}
			if kb.RevealThreshold < 0 || kb.RevealThreshold > 100 {
				report("npc %q boundary for %q has reveal_threshold %d outside 0-100", n.ID, kb.ClueID, kb.RevealThreshold)
			}
		}
	}

	for _, l := range c.Locations {
		for _, id := range l.NPCIDs {
			if !npcIDs[id] {
				report("location %q references unknown npc %q", l.ID, id)
			}
		}
		for _, id := range l.SearchableClueIDs {
			if !clueIDs[id] {
				report("location %q references unknown clue %q", l.ID, id)
			}
		}
		for _, id := range l.ConnectedLocationIDs {
			if !locIDs[id] {
				report("location %q connects to unknown location %q", l.ID, id)
			}
		}
	}

	for _, cl := range c.Clues {
		for _, pid := range cl.Prerequisites {
			if !clueIDs[pid] {
				report("clue %q requires unknown clue %q", cl.ID, pid)
			}
			if pid == cl.ID {
				report("clue %q cannot be its own prerequisite", cl.ID)
			}
		}
	}

	for _, conn := range c.ClueConnections {
		if !clueIDs[conn.FromClueID] {
			report("clue connection references unknown clue %q", conn.FromClueID)
		}
		if !clueIDs[conn.ToClueID] {
			report("clue connection references unknown clue %q", conn.ToClueID)
		}
	}

	for _, s := range c.Suspects {
		if !npcIDs[s.NPCID] {
			report("suspect references unknown npc %q", s.NPCID)
		}
		for _, id := range s.SupportingClueIDs {
			if !clueIDs[id] {
				report("suspect %q supporting evidence references unknown clue %q", s.NPCID, id)
			}
		}
		for _, id := range s.ExoneratingClueIDs {
			if !clueIDs[id] {
				report("suspect %q exonerating evidence references unknown clue %q", s.NPCID, id)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
