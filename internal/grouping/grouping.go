// Package grouping derives candidate duplicate groups from LFA1 master records.
//
// Two records are candidates for the same group exactly when their primary
// name (name1) and primary locality (ort01) are equal. No trimming or case
// folding is applied; an absent column counts as the empty string, so a NULL
// locality and a blank locality land in the same group.
package grouping

import (
	"sort"

	"github.com/christian-rost/stammdatenmanagement/internal/database"
)

// Key identifies a duplicate group
type Key struct {
	Name     string `json:"name"`
	Locality string `json:"locality"`
}

// Less orders keys by name, then locality
func (k Key) Less(other Key) bool {
	if k.Name != other.Name {
		return k.Name < other.Name
	}
	return k.Locality < other.Locality
}

// Group is one candidate duplicate set. MemberIDs is sorted ascending.
type Group struct {
	Key       Key
	Count     int
	MemberIDs []string
}

// KeyOf returns the grouping key of a record
func KeyOf(r database.MasterRecord) Key {
	return Key{Name: deref(r.Name1), Locality: deref(r.Ort01)}
}

// GroupRecords builds one group per distinct key. Groups are ordered by key
// and members by identifier, so equal input always yields equal output.
func GroupRecords(records []database.MasterRecord) []Group {
	index := make(map[Key]int)
	var groups []Group

	for _, r := range records {
		k := KeyOf(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].MemberIDs = append(groups[i].MemberIDs, r.Lifnr)
	}

	for i := range groups {
		sort.Strings(groups[i].MemberIDs)
		groups[i].Count = len(groups[i].MemberIDs)
	}
	sort.Slice(groups, func(a, b int) bool {
		return groups[a].Key.Less(groups[b].Key)
	})

	return groups
}

// Filter returns the records belonging to the group with the given key,
// ordered by identifier.
func Filter(records []database.MasterRecord, key Key) []database.MasterRecord {
	var out []database.MasterRecord
	for _, r := range records {
		if KeyOf(r) == key {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Lifnr < out[b].Lifnr
	})
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
