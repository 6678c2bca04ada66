package types

import "sort"

// Aligned is the result of pairing two row-cons chains by label,
// ignoring declaration order (spec §9 "Row alignment").
type Aligned struct {
	Common     []CommonField // labels present on both sides
	LeftOnly   rowFields     // labels only on the left, keyed by label
	RightOnly  rowFields     // labels only on the right, keyed by label
	LeftTail   Type          // left row's final non-RCons tail
	RightTail  Type          // right row's final non-RCons tail
}

// CommonField is one label present in both rows, with both sides' head
// types so the caller can recurse into them.
type CommonField struct {
	Label string
	Left  Type
	Right Type
}

// AlignRows partitions two row chains by label equality. It is the
// single implementation every row-aware consumer (head matching,
// substitution verification, the Row* built-ins) shares, per the
// teacher-style "implement once, reuse everywhere" design note.
func AlignRows(left, right Type) Aligned {
	leftFields, leftTail := RowToFields(left)
	rightFields, rightTail := RowToFields(right)

	var common []CommonField
	leftOnly := rowFields{}
	rightOnly := rowFields{}

	labels := make(map[string]bool, len(leftFields)+len(rightFields))
	for l := range leftFields {
		labels[l] = true
	}
	for l := range rightFields {
		labels[l] = true
	}
	sorted := make([]string, 0, len(labels))
	for l := range labels {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	for _, l := range sorted {
		lt, lok := leftFields[l]
		rt, rok := rightFields[l]
		switch {
		case lok && rok:
			common = append(common, CommonField{Label: l, Left: lt, Right: rt})
		case lok:
			leftOnly[l] = lt
		case rok:
			rightOnly[l] = rt
		}
	}

	return Aligned{
		Common:    common,
		LeftOnly:  leftOnly,
		RightOnly: rightOnly,
		LeftTail:  leftTail,
		RightTail: rightTail,
	}
}

// LeftOnlyRow rebuilds the left-only fields (sorted by label) terminated
// by the given tail — used wherever a built-in needs "the rest of the
// left row" as a fresh Type.
func (a Aligned) LeftOnlyRow(tail Type) Type { return RowFromList(a.LeftOnly, tail) }

// RightOnlyRow rebuilds the right-only fields terminated by tail.
func (a Aligned) RightOnlyRow(tail Type) Type { return RowFromList(a.RightOnly, tail) }
