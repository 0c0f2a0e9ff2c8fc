package esm

// Entry is one element of an archive body: a record or a group.
type Entry struct {
	Record Record
	Group  *Group
}

// Group is a GRUP block with its children.
type Group struct {
	Header  GroupHeader
	Entries []Entry
}

// Document is an archive held in memory in file order.
type Document struct {
	Header  ArchiveHeader
	Entries []Entry
}

// Append adds records to the end of the body.
func (d *Document) Append(recs ...Record) {
	for _, r := range recs {
		d.Entries = append(d.Entries, Entry{Record: r})
	}
}

// AppendGroup adds a group to the end of the body.
func (d *Document) AppendGroup(g *Group) {
	d.Entries = append(d.Entries, Entry{Group: g})
}

// AppendTable adds every record of t in key order. With grouped set they are
// wrapped in a top level group labelled with the table's tag.
func (d *Document) AppendTable(t Table, grouped bool) {
	if t.Len() == 0 {
		return
	}

	var entries []Entry
	t.Each(func(r Record) bool {
		entries = append(entries, Entry{Record: r})
		return true
	})

	if grouped {
		d.AppendGroup(&Group{
			Header:  GroupHeader{Label: t.Tag(), Type: GroupTop},
			Entries: entries,
		})
		return
	}
	d.Entries = append(d.Entries, entries...)
}

// Walk calls fn for every record in file order with its enclosing groups.
// It stops when fn returns false.
func (d *Document) Walk(fn func(rec Record, groups []GroupHeader) bool) {
	walkEntries(d.Entries, nil, fn)
}

func walkEntries(entries []Entry, groups []GroupHeader, fn func(Record, []GroupHeader) bool) bool {
	for _, e := range entries {
		if e.Group != nil {
			if !walkEntries(e.Group.Entries, append(groups[:len(groups):len(groups)], e.Group.Header), fn) {
				return false
			}
			continue
		}
		if !fn(e.Record, groups) {
			return false
		}
	}
	return true
}

// CountRecords returns the number of records in the body, plus the number of
// groups when withGroups is set. Archive headers store this count.
func (d *Document) CountRecords(withGroups bool) uint32 {
	return countEntries(d.Entries, withGroups)
}

func countEntries(entries []Entry, withGroups bool) uint32 {
	var n uint32
	for _, e := range entries {
		if e.Group != nil {
			if withGroups {
				n++
			}
			n += countEntries(e.Group.Entries, withGroups)
			continue
		}
		n++
	}
	return n
}
