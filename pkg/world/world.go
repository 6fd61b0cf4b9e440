package world

// World is the complete authored definition of a playable world.
// It is immutable after Load; all runtime mutation lives in session state.
type World struct {
	Name           string               `yaml:"name" json:"name"`
	Description    string               `yaml:"description,omitempty" json:"description,omitempty"`
	Start          string               `yaml:"start" json:"start"`                                         // Starting location key
	StartInventory []string             `yaml:"start_inventory,omitempty" json:"start_inventory,omitempty"` // Item keys the player begins with
	Locations      map[string]*Location `yaml:"locations" json:"locations"`
	Items          map[string]*Item     `yaml:"items,omitempty" json:"items,omitempty"`
	NPCs           map[string]*NPC      `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	Victory        Victory              `yaml:"victory" json:"victory"`
}

// Location is a place in the world graph. Items and NPCs belong to a
// location solely by appearing in its placement maps; there is no
// separate membership list.
type Location struct {
	Name       string               `yaml:"name" json:"name"`
	Atmosphere string               `yaml:"atmosphere,omitempty" json:"atmosphere,omitempty"` // Narration hint, opaque to the engine
	Exits      map[string]*Exit     `yaml:"exits,omitempty" json:"exits,omitempty"`           // Direction → Exit
	Items      map[string]Placement `yaml:"items,omitempty" json:"items,omitempty"`           // Item key → Placement
	NPCs       map[string]Placement `yaml:"npcs,omitempty" json:"npcs,omitempty"`             // NPC key → Placement
	Details    map[string]Detail    `yaml:"details,omitempty" json:"details,omitempty"`       // Examinable scenery
	Requires   *Requirement         `yaml:"requires,omitempty" json:"requires,omitempty"`     // Access gate for entering
}

// Exit connects a location to a destination. DestinationKnown only
// affects narration phrasing, never whether the exit can be used.
type Exit struct {
	To               string       `yaml:"to" json:"to"`
	Hidden           bool         `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	FindFlag         string       `yaml:"find_flag,omitempty" json:"find_flag,omitempty"` // Flag that reveals a hidden exit
	DestinationKnown bool         `yaml:"destination_known,omitempty" json:"destination_known,omitempty"`
	OneWay           bool         `yaml:"one_way,omitempty" json:"one_way,omitempty"` // Authored opt-out of the symmetry check
	Requires         *Requirement `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// Item is an item type. Where an item sits and whether it is hidden is
// owned by the Location's placement map, not the item itself, so the
// same item type can be visible in one location and hidden in another.
type Item struct {
	Name        string   `yaml:"name" json:"name"`
	Portable    bool     `yaml:"portable,omitempty" json:"portable,omitempty"`
	Scene       string   `yaml:"scene,omitempty" json:"scene,omitempty"`     // Shown when visible and unexamined
	Examine     string   `yaml:"examine,omitempty" json:"examine,omitempty"` // Shown on examine
	Unlocks     string   `yaml:"unlocks,omitempty" json:"unlocks,omitempty"` // Location or exit this item opens
	Container   bool     `yaml:"container,omitempty" json:"container,omitempty"`
	Open        bool     `yaml:"open,omitempty" json:"open,omitempty"`             // Initial container state
	RevealsFlag string   `yaml:"reveals_flag,omitempty" json:"reveals_flag,omitempty"` // Flag set when the container is opened
	Properties  []string `yaml:"properties,omitempty" json:"properties,omitempty"`     // e.g. "artifact", "critical"
}

// Item property tags with engine meaning. Artifact items count toward
// victory logic; critical items may not be discarded or destroyed.
const (
	PropertyArtifact = "artifact"
	PropertyCritical = "critical"
)

// HasProperty reports whether the item carries the named property tag.
func (it *Item) HasProperty(name string) bool {
	for _, p := range it.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// Placement records where and how visibly an item or NPC appears in a
// location.
type Placement struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	FindFlag    string `yaml:"find_flag,omitempty" json:"find_flag,omitempty"`
}

// Detail is examinable scenery. A detail may set a flag when examined,
// which makes details the workhorse authored flag setter.
type Detail struct {
	Description  string `yaml:"description" json:"description"`
	SetsFlag     string `yaml:"sets_flag,omitempty" json:"sets_flag,omitempty"`
	RequiresItem string `yaml:"requires_item,omitempty" json:"requires_item,omitempty"`
}

// Requirement gates access to a location or exit. Exactly one of Flag
// or Item should be set; a flag requirement is met when the flag is
// true, an item requirement when the item is in inventory.
type Requirement struct {
	Flag string `yaml:"flag,omitempty" json:"flag,omitempty"`
	Item string `yaml:"item,omitempty" json:"item,omitempty"`
}

// Victory is the win condition: be at Location with Flag set, holding
// Item if one is named.
type Victory struct {
	Location string `yaml:"location" json:"location"`
	Flag     string `yaml:"flag" json:"flag"`
	Item     string `yaml:"item,omitempty" json:"item,omitempty"`
}

// Predicate is one clause of an NPC's appears_when conjunction.
// FlagSet/FlagUnset name flags; MinTrust is a trust floor.
type Predicate struct {
	FlagSet   string `yaml:"flag_set,omitempty" json:"flag_set,omitempty"`
	FlagUnset string `yaml:"flag_unset,omitempty" json:"flag_unset,omitempty"`
	MinTrust  *int   `yaml:"min_trust,omitempty" json:"min_trust,omitempty"`
}

// RelocationRule moves an NPC when its flag is true. Rules are ordered
// and the last matching rule wins. A nil MoveTo removes the NPC from
// the world for the rest of the session.
type RelocationRule struct {
	Flag   string  `yaml:"flag" json:"flag"`
	MoveTo *string `yaml:"move_to" json:"move_to"`
}

// Topic is one thing an NPC can be talked to about. Topics may set a
// flag or adjust the NPC's trust counter.
type Topic struct {
	Prompt     string `yaml:"prompt,omitempty" json:"prompt,omitempty"` // Narration hint for the topic
	SetsFlag   string `yaml:"sets_flag,omitempty" json:"sets_flag,omitempty"`
	TrustDelta int    `yaml:"trust_delta,omitempty" json:"trust_delta,omitempty"`
	RequiresItem string `yaml:"requires_item,omitempty" json:"requires_item,omitempty"`
}

// NPC is a non-player character. Location is the default home;
// Locations is an optional roaming set used by authors as documentation
// of everywhere the NPC may end up.
type NPC struct {
	Name            string           `yaml:"name" json:"name"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Location        string           `yaml:"location,omitempty" json:"location,omitempty"`
	Locations       []string         `yaml:"locations,omitempty" json:"locations,omitempty"`
	AppearsWhen     []Predicate      `yaml:"appears_when,omitempty" json:"appears_when,omitempty"`
	LocationChanges []RelocationRule `yaml:"location_changes,omitempty" json:"location_changes,omitempty"`
	Topics          map[string]Topic `yaml:"topics,omitempty" json:"topics,omitempty"`
}

// Home returns the NPC's default location.
func (n *NPC) Home() string {
	if n.Location != "" {
		return n.Location
	}
	if len(n.Locations) > 0 {
		return n.Locations[0]
	}
	return ""
}

// GetLocation returns a location by key.
func (w *World) GetLocation(key string) (*Location, bool) {
	loc, ok := w.Locations[key]
	return loc, ok
}

// GetItem returns an item by key.
func (w *World) GetItem(key string) (*Item, bool) {
	it, ok := w.Items[key]
	return it, ok
}

// GetNPC returns an NPC by key.
func (w *World) GetNPC(key string) (*NPC, bool) {
	n, ok := w.NPCs[key]
	return n, ok
}
