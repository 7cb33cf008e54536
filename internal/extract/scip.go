package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

// LoadSCIP adapts a SCIP protobuf index into extraction facts. SCIP indexers
// are one supported external extractor; they carry definitions and
// cross-references but no complexity measurements, so symbol complexity is
// zero for SCIP-sourced scans.
func LoadSCIP(path string) ([]FileExtraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scip index %s: %w", path, err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse scip index %s: %w", path, err)
	}

	results := make([]FileExtraction, 0, len(index.Documents))
	for _, doc := range index.Documents {
		fe := FileExtraction{
			FilePath: doc.RelativePath,
			Language: doc.Language,
		}

		info := make(map[string]*scippb.SymbolInformation, len(doc.Symbols))
		for _, sym := range doc.Symbols {
			info[sym.Symbol] = sym
		}

		maxLine := 0
		for _, occ := range doc.Occurrences {
			if len(occ.Range) == 0 {
				continue
			}
			lineStart := int(occ.Range[0]) + 1
			lineEnd := lineStart
			if len(occ.Range) == 4 {
				lineEnd = int(occ.Range[2]) + 1
			}
			if lineEnd > maxLine {
				maxLine = lineEnd
			}

			if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 {
				continue
			}

			si := info[occ.Symbol]
			kind, ok := symbolKindFromSCIP(si)
			if !ok {
				continue
			}

			name := displayName(occ.Symbol, si)
			sym := Symbol{
				Kind:      kind,
				Name:      name,
				Exported:  isExportedName(name),
				LineStart: lineStart,
				LineEnd:   lineEnd,
			}
			if si != nil && len(si.Documentation) > 0 {
				sym.Documentation = strings.Join(si.Documentation, "\n")
			}
			fe.Symbols = append(fe.Symbols, sym)

			if sym.Exported {
				fe.Exports = append(fe.Exports, Export{Name: name})
			}
		}

		// SCIP carries no line counts; the occurrence extent is the best
		// available lower bound.
		fe.LineCount = maxLine

		sort.Slice(fe.Symbols, func(i, j int) bool {
			if fe.Symbols[i].LineStart != fe.Symbols[j].LineStart {
				return fe.Symbols[i].LineStart < fe.Symbols[j].LineStart
			}
			return fe.Symbols[i].Name < fe.Symbols[j].Name
		})

		results = append(results, fe)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})
	return results, nil
}

// symbolKindFromSCIP maps SCIP symbol kinds onto graph node kinds. Kinds
// with no graph equivalent (packages, parameters, locals) are dropped.
func symbolKindFromSCIP(si *scippb.SymbolInformation) (SymbolKind, bool) {
	if si == nil {
		return "", false
	}
	switch si.Kind {
	case scippb.SymbolInformation_Function, scippb.SymbolInformation_Method,
		scippb.SymbolInformation_Constructor, scippb.SymbolInformation_StaticMethod:
		return KindFunction, true
	case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct:
		return KindClass, true
	case scippb.SymbolInformation_Interface, scippb.SymbolInformation_Trait,
		scippb.SymbolInformation_Protocol:
		return KindInterface, true
	case scippb.SymbolInformation_Enum:
		return KindEnum, true
	case scippb.SymbolInformation_Type, scippb.SymbolInformation_TypeAlias,
		scippb.SymbolInformation_TypeParameter:
		return KindType, true
	case scippb.SymbolInformation_Variable, scippb.SymbolInformation_Constant,
		scippb.SymbolInformation_Field, scippb.SymbolInformation_Property:
		return KindVariable, true
	default:
		return "", false
	}
}

// displayName prefers the indexer-provided display name over the raw
// symbol string.
func displayName(symbol string, si *scippb.SymbolInformation) string {
	if si != nil && si.DisplayName != "" {
		return si.DisplayName
	}
	// Fall back to the last descriptor segment of the SCIP symbol.
	trimmed := strings.TrimRight(symbol, "().#")
	if idx := strings.LastIndexAny(trimmed, "/#."); idx >= 0 && idx+1 < len(trimmed) {
		return trimmed[idx+1:]
	}
	return trimmed
}

// isExportedName is a capitalization heuristic; SCIP does not carry
// visibility for every language.
func isExportedName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}
