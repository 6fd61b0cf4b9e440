package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// Check names, one per independent analysis pass.
const (
	CheckIDs          = "id_format"
	CheckReferences   = "references"
	CheckHiddenGates  = "hidden_gates"
	CheckFlags        = "flag_dependencies"
	CheckSymmetry     = "exit_symmetry"
	CheckReachability = "reachability"
	CheckPuzzles      = "puzzle_solvability"
	CheckNPCs         = "npc_placement"
	CheckVictory      = "victory_locality"
)

// Run performs every static check over the world graph and returns the
// combined report. Run is read-only and safe to call concurrently for
// different worlds; it never mutates the world.
func Run(w *world.World) *Report {
	v := &validator{w: w, report: &Report{World: w.Name}}

	v.checkIDs()
	v.checkReferences()
	v.checkHiddenGates()
	v.checkFlags()
	v.checkSymmetry()
	v.checkReachability()
	v.checkPuzzles()
	v.checkNPCs()
	v.checkVictory()

	v.report.sortFindings()
	return v.report
}

type validator struct {
	w      *world.World
	report *Report
}

var validIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// checkIDs requires every authored key to be lowercase snake_case so
// that ids survive intent parsing and flag references verbatim.
func (v *validator) checkIDs() {
	check := func(kind, id string) {
		if id != "" && !validIDPattern.MatchString(id) {
			v.report.add(CheckIDs, SeverityError, fmt.Sprintf("%s %q should be lowercase snake_case", kind, id), id)
		}
	}

	for key, loc := range v.w.Locations {
		check("location", key)
		for dir := range loc.Exits {
			check("exit direction", dir)
		}
		for key := range loc.Items {
			check("item placement", key)
		}
		for key := range loc.NPCs {
			check("npc placement", key)
		}
		for key := range loc.Details {
			check("detail", key)
		}
	}
	for key := range v.w.Items {
		check("item", key)
	}
	for key := range v.w.NPCs {
		check("npc", key)
	}
}

// checkReferences verifies that every id mentioned anywhere resolves
// to an existing entity.
func (v *validator) checkReferences() {
	if _, ok := v.w.Locations[v.w.Start]; !ok {
		v.report.add(CheckReferences, SeverityError, fmt.Sprintf("start location %q does not exist", v.w.Start), v.w.Start)
	}
	for _, item := range v.w.StartInventory {
		if _, ok := v.w.Items[item]; !ok {
			v.report.add(CheckReferences, SeverityError, fmt.Sprintf("starting inventory item %q does not exist", item), item)
		}
	}

	for locKey, loc := range v.w.Locations {
		for dir, ex := range loc.Exits {
			if _, ok := v.w.Locations[ex.To]; !ok {
				v.report.add(CheckReferences, SeverityError,
					fmt.Sprintf("exit %s from %q leads to unknown location %q", dir, locKey, ex.To), locKey, ex.To)
			}
			v.checkRequirement(ex.Requires, fmt.Sprintf("exit %s/%s", locKey, dir))
		}
		for itemKey := range loc.Items {
			if _, ok := v.w.Items[itemKey]; !ok {
				v.report.add(CheckReferences, SeverityError,
					fmt.Sprintf("location %q places unknown item %q", locKey, itemKey), locKey, itemKey)
			}
		}
		for npcKey := range loc.NPCs {
			if _, ok := v.w.NPCs[npcKey]; !ok {
				v.report.add(CheckReferences, SeverityError,
					fmt.Sprintf("location %q places unknown npc %q", locKey, npcKey), locKey, npcKey)
			}
		}
		for detailKey, d := range loc.Details {
			if d.RequiresItem != "" {
				if _, ok := v.w.Items[d.RequiresItem]; !ok {
					v.report.add(CheckReferences, SeverityError,
						fmt.Sprintf("detail %q in %q requires unknown item %q", detailKey, locKey, d.RequiresItem), detailKey, d.RequiresItem)
				}
			}
		}
		v.checkRequirement(loc.Requires, fmt.Sprintf("location %s", locKey))
	}

	for itemKey, it := range v.w.Items {
		if it.Unlocks == "" {
			continue
		}
		if !v.unlockTargetExists(it.Unlocks) {
			v.report.add(CheckReferences, SeverityError,
				fmt.Sprintf("item %q unlocks unknown target %q", itemKey, it.Unlocks), itemKey, it.Unlocks)
		}
	}

	if _, ok := v.w.Locations[v.w.Victory.Location]; !ok {
		v.report.add(CheckReferences, SeverityError,
			fmt.Sprintf("victory location %q does not exist", v.w.Victory.Location), v.w.Victory.Location)
	}
	if v.w.Victory.Item != "" {
		if _, ok := v.w.Items[v.w.Victory.Item]; !ok {
			v.report.add(CheckReferences, SeverityError,
				fmt.Sprintf("victory item %q does not exist", v.w.Victory.Item), v.w.Victory.Item)
		}
	}
}

func (v *validator) checkRequirement(req *world.Requirement, context string) {
	if req == nil || req.Item == "" {
		return
	}
	if _, ok := v.w.Items[req.Item]; !ok {
		v.report.add(CheckReferences, SeverityError,
			fmt.Sprintf("%s requires unknown item %q", context, req.Item), req.Item)
	}
}

// unlockTargetExists accepts either a location key or an exit id of
// the form "location/direction".
func (v *validator) unlockTargetExists(target string) bool {
	if _, ok := v.w.Locations[target]; ok {
		return true
	}
	locKey, dir, found := strings.Cut(target, "/")
	if !found {
		return false
	}
	loc, ok := v.w.Locations[locKey]
	if !ok {
		return false
	}
	_, ok = loc.Exits[dir]
	return ok
}

// checkHiddenGates enforces the invariant that anything hidden has a
// find condition; a hidden entity without one can never be seen.
func (v *validator) checkHiddenGates() {
	for locKey, loc := range v.w.Locations {
		for dir, ex := range loc.Exits {
			if ex.Hidden && ex.FindFlag == "" {
				v.report.add(CheckHiddenGates, SeverityError,
					fmt.Sprintf("hidden exit %s from %q has no find_flag", dir, locKey), locKey)
			}
		}
		for key, p := range loc.Items {
			if p.Hidden && p.FindFlag == "" {
				v.report.add(CheckHiddenGates, SeverityError,
					fmt.Sprintf("hidden item %q in %q has no find_flag", key, locKey), locKey, key)
			}
		}
		for key, p := range loc.NPCs {
			if p.Hidden && p.FindFlag == "" {
				v.report.add(CheckHiddenGates, SeverityError,
					fmt.Sprintf("hidden npc %q in %q has no find_flag", key, locKey), locKey, key)
			}
		}
	}
}

// flagSource is one authored setter of a flag together with the
// location the player must occupy to trigger it.
type flagSource struct {
	kind     string // "detail", "container", "topic"
	owner    string // entity id
	location string // owning location key; "" when unknown
}

// flagSetters builds the setter half of the flag dependency graph.
func (v *validator) flagSetters() map[string][]flagSource {
	setters := make(map[string][]flagSource)

	for locKey, loc := range v.w.Locations {
		for detailKey, d := range loc.Details {
			if d.SetsFlag != "" {
				setters[d.SetsFlag] = append(setters[d.SetsFlag],
					flagSource{kind: "detail", owner: detailKey, location: locKey})
			}
		}
		// A container's reveal flag is set wherever the container is placed.
		for itemKey := range loc.Items {
			it, ok := v.w.Items[itemKey]
			if ok && it.Container && it.RevealsFlag != "" {
				setters[it.RevealsFlag] = append(setters[it.RevealsFlag],
					flagSource{kind: "container", owner: itemKey, location: locKey})
			}
		}
	}

	for npcKey, n := range v.w.NPCs {
		for topicKey, topic := range n.Topics {
			if topic.SetsFlag != "" {
				setters[topic.SetsFlag] = append(setters[topic.SetsFlag],
					flagSource{kind: "topic", owner: npcKey + "/" + topicKey, location: n.Home()})
			}
		}
	}

	return setters
}

// flagReaders builds the reader half of the flag dependency graph:
// every gate that tests a flag.
func (v *validator) flagReaders() map[string][]string {
	readers := make(map[string][]string)
	read := func(flag, gate string) {
		if flag != "" {
			readers[flag] = append(readers[flag], gate)
		}
	}

	for locKey, loc := range v.w.Locations {
		for dir, ex := range loc.Exits {
			read(ex.FindFlag, fmt.Sprintf("exit %s/%s", locKey, dir))
			if ex.Requires != nil {
				read(ex.Requires.Flag, fmt.Sprintf("exit %s/%s", locKey, dir))
			}
		}
		for key, p := range loc.Items {
			read(p.FindFlag, fmt.Sprintf("item %s@%s", key, locKey))
		}
		for key, p := range loc.NPCs {
			read(p.FindFlag, fmt.Sprintf("npc %s@%s", key, locKey))
		}
		if loc.Requires != nil {
			read(loc.Requires.Flag, fmt.Sprintf("location %s", locKey))
		}
	}

	for npcKey, n := range v.w.NPCs {
		for _, p := range n.AppearsWhen {
			read(p.FlagSet, fmt.Sprintf("npc %s appears_when", npcKey))
			read(p.FlagUnset, fmt.Sprintf("npc %s appears_when", npcKey))
		}
		for _, rule := range n.LocationChanges {
			read(rule.Flag, fmt.Sprintf("npc %s location_changes", npcKey))
		}
	}

	read(v.w.Victory.Flag, "victory condition")
	return readers
}

// checkFlags runs the bipartite flag-dependency analysis: every read
// flag needs exactly one setter, and a set flag nobody reads is noted
// as an orphan.
func (v *validator) checkFlags() {
	setters := v.flagSetters()
	readers := v.flagReaders()

	flags := make(map[string]bool)
	for f := range setters {
		flags[f] = true
	}
	for f := range readers {
		flags[f] = true
	}

	names := make([]string, 0, len(flags))
	for f := range flags {
		names = append(names, f)
	}
	sort.Strings(names)

	for _, f := range names {
		set := setters[f]
		reads := readers[f]

		switch {
		case len(set) == 0 && len(reads) > 0:
			v.report.add(CheckFlags, SeverityError,
				fmt.Sprintf("flag %q is checked but never set; gates on it can never open", f),
				append([]string{f}, reads...)...)
		case len(set) > 1:
			ids := []string{f}
			for _, s := range set {
				ids = append(ids, s.kind+":"+s.owner)
			}
			v.report.add(CheckFlags, SeverityError,
				fmt.Sprintf("flag %q has %d setters; ambiguous setters create unintended shortcuts", f, len(set)), ids...)
		case len(set) == 1 && len(reads) == 0:
			v.report.add(CheckFlags, SeverityWarning,
				fmt.Sprintf("flag %q is set but never checked", f), f)
		}
	}
}

// checkSymmetry requires a return exit for every exit unless the exit
// is explicitly authored one-way.
func (v *validator) checkSymmetry() {
	for locKey, loc := range v.w.Locations {
		for dir, ex := range loc.Exits {
			if ex.OneWay {
				continue
			}
			dest, ok := v.w.Locations[ex.To]
			if !ok {
				continue // reference check already reported it
			}
			back := false
			for _, rev := range dest.Exits {
				if rev.To == locKey {
					back = true
					break
				}
			}
			if !back {
				v.report.add(CheckSymmetry, SeverityError,
					fmt.Sprintf("exit %s from %q to %q has no return exit; mark one_way if intentional", dir, locKey, ex.To),
					locKey, ex.To)
			}
		}
	}
}

// checkReachability walks the exit graph from the start location,
// ignoring hidden and gated status: it verifies potential
// reachability, not current.
func (v *validator) checkReachability() {
	if _, ok := v.w.Locations[v.w.Start]; !ok {
		return // reference check already reported it
	}

	seen := map[string]bool{v.w.Start: true}
	queue := []string{v.w.Start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ex := range v.w.Locations[cur].Exits {
			if _, ok := v.w.Locations[ex.To]; ok && !seen[ex.To] {
				seen[ex.To] = true
				queue = append(queue, ex.To)
			}
		}
	}

	unreachable := make([]string, 0)
	for key := range v.w.Locations {
		if !seen[key] {
			unreachable = append(unreachable, key)
		}
	}
	sort.Strings(unreachable)
	for _, key := range unreachable {
		v.report.add(CheckReachability, SeverityError,
			fmt.Sprintf("location %q is unreachable from start %q", key, v.w.Start), key)
	}
}

// itemHomes returns every location placing the item.
func (v *validator) itemHomes(itemKey string) []string {
	var homes []string
	for locKey, loc := range v.w.Locations {
		if _, ok := loc.Items[itemKey]; ok {
			homes = append(homes, locKey)
		}
	}
	sort.Strings(homes)
	return homes
}

// checkPuzzles builds the key/lock dependency graph and rejects
// circular key dependencies and duplicate placements of portable
// items.
func (v *validator) checkPuzzles() {
	for itemKey, it := range v.w.Items {
		if !it.Portable {
			continue
		}
		homes := v.itemHomes(itemKey)
		if len(homes) > 1 {
			v.report.add(CheckPuzzles, SeverityError,
				fmt.Sprintf("portable item %q is placed in %d locations", itemKey, len(homes)),
				append([]string{itemKey}, homes...)...)
		}
	}

	inStart := make(map[string]bool, len(v.w.StartInventory))
	for _, item := range v.w.StartInventory {
		inStart[item] = true
	}

	// deps maps a gated location to the locations holding its keys.
	deps := make(map[string][]string)
	addDep := func(gated, itemKey string) {
		if inStart[itemKey] {
			return
		}
		for _, home := range v.itemHomes(itemKey) {
			if home != gated {
				deps[gated] = append(deps[gated], home)
			} else {
				// The key sits behind the very lock it opens.
				deps[gated] = append(deps[gated], gated)
			}
		}
	}

	for locKey, loc := range v.w.Locations {
		if loc.Requires != nil && loc.Requires.Item != "" {
			addDep(locKey, loc.Requires.Item)
		}
		for _, ex := range loc.Exits {
			if ex.Requires != nil && ex.Requires.Item != "" {
				addDep(ex.To, ex.Requires.Item)
			}
		}
	}

	// DFS with coloring over the dependency graph.
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	color := make(map[string]int)
	var cycle []string

	var visit func(node string, path []string) bool
	visit = func(node string, path []string) bool {
		color[node] = visiting
		path = append(path, node)
		for _, dep := range deps[node] {
			switch color[dep] {
			case visiting:
				cycle = append(append([]string(nil), path...), dep)
				return true
			case unvisited:
				if visit(dep, path) {
					return true
				}
			}
		}
		color[node] = done
		return false
	}

	nodes := make([]string, 0, len(deps))
	for node := range deps {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if color[node] == unvisited && visit(node, nil) {
			v.report.add(CheckPuzzles, SeverityError,
				fmt.Sprintf("circular key dependency: %s", strings.Join(cycle, " → ")), cycle...)
			return
		}
	}
}

// checkNPCs verifies placement consistency: declared homes must host
// the NPC, and relocation targets must exist.
func (v *validator) checkNPCs() {
	for npcKey, n := range v.w.NPCs {
		homes := n.Locations
		if n.Location != "" {
			homes = append([]string{n.Location}, homes...)
		}
		if len(homes) == 0 {
			v.report.add(CheckNPCs, SeverityError,
				fmt.Sprintf("npc %q declares no location", npcKey), npcKey)
			continue
		}

		for _, home := range homes {
			loc, ok := v.w.Locations[home]
			if !ok {
				v.report.add(CheckNPCs, SeverityError,
					fmt.Sprintf("npc %q declares unknown location %q", npcKey, home), npcKey, home)
				continue
			}
			if _, placed := loc.NPCs[npcKey]; !placed {
				v.report.add(CheckNPCs, SeverityError,
					fmt.Sprintf("npc %q declares location %q but is not placed there", npcKey, home), npcKey, home)
			}
		}

		for i, rule := range n.LocationChanges {
			if rule.MoveTo == nil {
				continue
			}
			if _, ok := v.w.Locations[*rule.MoveTo]; !ok {
				v.report.add(CheckNPCs, SeverityError,
					fmt.Sprintf("npc %q location_changes[%d] moves to unknown location %q", npcKey, i, *rule.MoveTo),
					npcKey, *rule.MoveTo)
			}
		}
	}
}

// checkVictory verifies that the victory flag's unique setter belongs
// to the victory location, so the game cannot be won from anywhere
// else. Zero or multiple setters are already errors from the flag
// check, so locality is only judged for a unique setter.
func (v *validator) checkVictory() {
	if v.w.Victory.Flag == "" {
		v.report.add(CheckVictory, SeverityError, "world has no victory flag")
		return
	}

	setters := v.flagSetters()[v.w.Victory.Flag]
	if len(setters) != 1 {
		return
	}

	s := setters[0]
	if s.location != v.w.Victory.Location {
		v.report.add(CheckVictory, SeverityError,
			fmt.Sprintf("victory flag %q is set by %s %q in %q, not at victory location %q",
				v.w.Victory.Flag, s.kind, s.owner, s.location, v.w.Victory.Location),
			v.w.Victory.Flag, s.owner)
	}
}
