package rca

// lookup.go answers reverse PCI questions from drive-test work: given a
// physical cell identity seen in the field, which configured cell is
// broadcasting it. NR dumps carry the PCI directly; LTE dumps split it
// into group and sub-cell identity (pci = group*3 + sub).

import (
	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// RSRP severity thresholds in dBm.
const (
	rsrpCriticalDBm = -115.0
	rsrpWeakDBm     = -105.0
)

// RSRPSeverity grades an NR RSRP sample.
func RSRPSeverity(rsrpDBm float64) string {
	switch {
	case rsrpDBm < rsrpCriticalDBm:
		return "CRITICAL"
	case rsrpDBm < rsrpWeakDBm:
		return "WEAK"
	default:
		return "OK"
	}
}

// CellRef identifies one configured cell found by a reverse lookup.
type CellRef struct {
	Cell string `json:"cell"`
	Node string `json:"node"`
	File string `json:"file"`
}

// Technology tags distinguishing the configuration dumps in the archive.
const (
	nrCellTag  = "nr_cell"
	lteCellTag = "lte_cell"
)

// Lookup resolves PCIs against the latest configuration dumps.
type Lookup struct {
	store *archive.Store
}

// NewLookup creates a lookup service reading from the given archive store.
func NewLookup(store *archive.Store) *Lookup {
	return &Lookup{store: store}
}

// NRCellsByPCI returns every cell in the latest NR configuration dump
// whose broadcast PCI equals pci.
func (l *Lookup) NRCellsByPCI(pci int) ([]CellRef, error) {
	const op = "rca.NRCellsByPCI"

	table, name, err := l.loadDump(op, nrCellTag)
	if err != nil {
		return nil, err
	}

	pciCol, ok := ingest.FindColumn(table.Headers, []string{"nrpci"})
	if !ok {
		return nil, apperr.Newf(apperr.KindSchemaMismatch, op, "%s has no nRPCI column", name)
	}
	cellCol, _ := ingest.FindColumn(table.Headers, []string{"nrcelldu", "cell"})
	nodeCol, _ := ingest.FindColumn(table.Headers, []string{"nodeid", "node"})

	var refs []CellRef
	for i := 0; i < table.Len(); i++ {
		raw, ok := table.Column(i, pciCol)
		if !ok {
			continue
		}
		v, err := ingest.ParseFloatCell(raw)
		if err != nil || int(v) != pci {
			continue
		}
		refs = append(refs, cellRefAt(table, i, cellCol, nodeCol, name))
	}
	return refs, nil
}

// LTEAnchorsByPCI returns every cell in the latest LTE configuration dump
// whose physical-layer identity combines to pci.
func (l *Lookup) LTEAnchorsByPCI(pci int) ([]CellRef, error) {
	const op = "rca.LTEAnchorsByPCI"

	table, name, err := l.loadDump(op, lteCellTag)
	if err != nil {
		return nil, err
	}

	groupCol, okGroup := ingest.FindColumn(table.Headers, []string{"physicallayercellidgroup"})
	subCol, okSub := ingest.FindColumn(table.Headers, []string{"physicallayersubcellid"})
	if !okGroup || !okSub {
		return nil, apperr.Newf(apperr.KindSchemaMismatch, op, "%s has no physical layer identity columns", name)
	}
	cellCol, _ := ingest.FindColumn(table.Headers, []string{"eutrancellfdd", "cell"})
	nodeCol, _ := ingest.FindColumn(table.Headers, []string{"nodeid", "node"})

	var refs []CellRef
	for i := 0; i < table.Len(); i++ {
		groupRaw, okG := table.Column(i, groupCol)
		subRaw, okS := table.Column(i, subCol)
		if !okG || !okS {
			continue
		}
		group, errG := ingest.ParseFloatCell(groupRaw)
		sub, errS := ingest.ParseFloatCell(subRaw)
		if errG != nil || errS != nil {
			continue
		}
		if int(group)*3+int(sub) != pci {
			continue
		}
		refs = append(refs, cellRefAt(table, i, cellCol, nodeCol, name))
	}
	return refs, nil
}

// loadDump locates and loads the newest configuration dump matching tag.
func (l *Lookup) loadDump(op, tag string) (*ingest.Table, string, error) {
	file, ok := l.store.Latest(schema.CategoryCM, tag)
	if !ok {
		return nil, "", apperr.Newf(apperr.KindDataUnavailable, op, "no %s dump in archive", tag)
	}
	def, _ := schema.Get(string(schema.CategoryCM))
	table, err := ingest.LoadTable(file.Path, def.Anchors)
	if err != nil {
		return nil, "", err
	}
	return table, file.Name, nil
}

func cellRefAt(table *ingest.Table, i int, cellCol, nodeCol, file string) CellRef {
	ref := CellRef{File: file}
	if cellCol != "" {
		ref.Cell, _ = table.Column(i, cellCol)
	}
	if nodeCol != "" {
		ref.Node, _ = table.Column(i, nodeCol)
	}
	return ref
}
