package screen

// PaneGroups tracks, per client, the set of panes that client has
// grouped together (so a later "close grouped panes" or "move grouped
// panes" instruction applies to all of them at once).
type PaneGroups struct {
	byClient map[ClientId]map[PaneId]bool
}

// NewPaneGroups creates an empty group tracker.
func NewPaneGroups() *PaneGroups {
	return &PaneGroups{byClient: make(map[ClientId]map[PaneId]bool)}
}

// Group returns the set of panes client has grouped, as a fresh slice.
func (g *PaneGroups) Group(client ClientId) []PaneId {
	set := g.byClient[client]
	out := make([]PaneId, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Toggle adds id to client's group if absent, removes it if present.
func (g *PaneGroups) Toggle(id PaneId, client ClientId) {
	set := g.ensure(client)
	if set[id] {
		delete(set, id)
	} else {
		set[id] = true
	}
}

// Add puts id in client's group if not already there.
func (g *PaneGroups) Add(id PaneId, client ClientId) {
	g.ensure(client)[id] = true
}

// Clear empties client's group.
func (g *PaneGroups) Clear(client ClientId) {
	g.byClient[client] = make(map[PaneId]bool)
}

// GroupAndUngroup applies a bulk membership change in one step, the
// shape an "add these, remove those" UI action produces.
func (g *PaneGroups) GroupAndUngroup(client ClientId, toGroup, toUngroup []PaneId) {
	set := g.ensure(client)
	for _, id := range toGroup {
		set[id] = true
	}
	for _, id := range toUngroup {
		delete(set, id)
	}
}

// RemovePane drops id from every client's group, called when a pane
// closes.
func (g *PaneGroups) RemovePane(id PaneId) {
	for _, set := range g.byClient {
		delete(set, id)
	}
}

func (g *PaneGroups) ensure(client ClientId) map[PaneId]bool {
	set, ok := g.byClient[client]
	if !ok {
		set = make(map[PaneId]bool)
		g.byClient[client] = set
	}
	return set
}
