package ffq

import (
	"fmt"
	"strings"
)

// Translate turns a parsed query into a ValueSet.compose. Translation
// never fails: inputs the compose model cannot express produce empty
// components instead of errors, leaving the final say to validation.
func Translate(ast *Start) *Compose {
	aliases := make(map[string]AliasTarget, len(ast.Headers))
	for _, h := range ast.Headers {
		aliases[h.Name] = h.Target
	}

	include, exclude := translateExpr(ast.Expr, aliases)
	return &Compose{Include: include, Exclude: exclude}
}

// TranslateQuery parses and translates in one step.
func TranslateQuery(input string) (*Compose, error) {
	ast, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Translate(ast), nil
}

func translateExpr(expr Expr, aliases map[string]AliasTarget) (include, exclude []Component) {
	switch e := expr.(type) {
	case ClauseExpr:
		return translateClause(e, aliases)

	case MinusExpr:
		include, exclude = translateExpr(e.Left, aliases)
		rightInc, rightExc := translateExpr(e.Right, aliases)
		// A - B includes A and excludes B; B's own excludes flip back
		// to includes.
		exclude = append(exclude, rightInc...)
		include = append(include, rightExc...)
		return include, exclude

	case OrExpr:
		include, exclude = translateExpr(e.Left, aliases)
		rightInc, rightExc := translateExpr(e.Right, aliases)
		return append(include, rightInc...), append(exclude, rightExc...)

	case AndExpr:
		// Cross-clause intersection is not expressible in compose;
		// concatenate and leave the intersection to the consumer.
		include, exclude = translateExpr(e.Left, aliases)
		rightInc, rightExc := translateExpr(e.Right, aliases)
		return append(include, rightInc...), append(exclude, rightExc...)

	case NotExpr:
		include, exclude = translateExpr(e.Inner, aliases)
		return exclude, include

	case GroupExpr:
		return translateExpr(e.Inner, aliases)
	}
	return nil, nil
}

// part is a component under construction, before system and version are
// stamped on.
type part struct {
	concepts  []ConceptRef
	filters   []Filter
	valueSets []string
}

func translateClause(clause ClauseExpr, aliases map[string]AliasTarget) (include, exclude []Component) {
	system, aliasVersion := resolveSystemAndVersion(clause.System, aliases)
	version := clause.Version
	if version == "" {
		version = aliasVersion
	}

	build := func(parts []part) []Component {
		components := make([]Component, 0, len(parts))
		for _, pt := range parts {
			components = append(components, Component{
				System:   system,
				Version:  version,
				Concept:  pt.concepts,
				Filter:   pt.filters,
				ValueSet: resolveValueSetAliases(pt.valueSets, aliases),
			})
		}
		return components
	}

	if m, ok := clause.Inner.(InnerMinus); ok {
		// left minus right: left includes, right excludes.
		return build(translateInner(m.Left, aliases)), build(translateInner(m.Right, aliases))
	}

	if containsNot(clause.Inner) {
		return extractIncludesExcludes(clause.Inner, system, version, aliases)
	}

	return build(translateInner(clause.Inner, aliases)), nil
}

func containsNot(expr InnerExpr) bool {
	switch e := expr.(type) {
	case InnerNot:
		return true
	case InnerAnd:
		return containsNot(e.Left) || containsNot(e.Right)
	case InnerOr:
		return containsNot(e.Left) || containsNot(e.Right)
	case InnerGroup:
		return containsNot(e.Inner)
	}
	return false
}

// extractIncludesExcludes handles clauses with negation: subtrees under a
// Not become excludes, the rest become includes. And with includes on
// both sides combines them pairwise, like translateInner does.
func extractIncludesExcludes(expr InnerExpr, system, version string, aliases map[string]AliasTarget) (include, exclude []Component) {
	build := func(parts []part) []Component {
		components := make([]Component, 0, len(parts))
		for _, pt := range parts {
			components = append(components, Component{
				System:   system,
				Version:  version,
				Concept:  pt.concepts,
				Filter:   pt.filters,
				ValueSet: resolveValueSetAliases(pt.valueSets, aliases),
			})
		}
		return components
	}

	switch e := expr.(type) {
	case InnerNot:
		return nil, build(translateInner(e.Inner, aliases))

	case InnerAnd:
		leftInc, leftExc := extractIncludesExcludes(e.Left, system, version, aliases)
		rightInc, rightExc := extractIncludesExcludes(e.Right, system, version, aliases)

		if len(leftInc) > 0 && len(rightInc) > 0 {
			for _, l := range leftInc {
				for _, r := range rightInc {
					include = append(include, Component{
						System:   system,
						Version:  version,
						Concept:  concatConcepts(l.Concept, r.Concept),
						Filter:   concatFilters(l.Filter, r.Filter),
						ValueSet: concatStrings(l.ValueSet, r.ValueSet),
					})
				}
			}
		} else {
			include = append(include, leftInc...)
			include = append(include, rightInc...)
		}
		exclude = append(exclude, leftExc...)
		exclude = append(exclude, rightExc...)
		return include, exclude

	default:
		return build(translateInner(expr, aliases)), nil
	}
}

// translateInner lowers an inner expression to a list of parts. Or is a
// union of parts; And is the cartesian product, concatenating the lists
// of each pair so intersection stays inside a single component.
func translateInner(expr InnerExpr, aliases map[string]AliasTarget) []part {
	switch e := expr.(type) {
	case TermExpr:
		if in, ok := e.Term.(PropertyInTerm); ok {
			// One sibling component per value: equality filters
			// round-trip where op=in does not.
			parts := make([]part, 0, len(in.Values))
			for _, v := range in.Values {
				parts = append(parts, part{filters: []Filter{{
					Property: in.Property,
					Op:       OpEquals,
					Value:    valueString(v),
				}}})
			}
			return parts
		}
		return []part{translateTerm(e.Term, aliases)}

	case InnerAnd:
		left := translateInner(e.Left, aliases)
		right := translateInner(e.Right, aliases)
		product := make([]part, 0, len(left)*len(right))
		for _, l := range left {
			for _, r := range right {
				product = append(product, part{
					concepts:  concatConcepts(l.concepts, r.concepts),
					filters:   concatFilters(l.filters, r.filters),
					valueSets: concatStrings(l.valueSets, r.valueSets),
				})
			}
		}
		return product

	case InnerOr:
		return append(translateInner(e.Left, aliases), translateInner(e.Right, aliases)...)

	case InnerGroup:
		return translateInner(e.Inner, aliases)

	case InnerMinus, InnerNot:
		// Handled at the clause level; reaching one here means the
		// expression shape has no compose equivalent.
		return []part{{}}
	}
	return []part{{}}
}

func translateTerm(term Term, aliases map[string]AliasTarget) part {
	switch t := term.(type) {
	case HierarchyTerm:
		return part{filters: []Filter{{
			Property: "concept",
			Op:       hierarchyOp(t.Op),
			Value:    t.Code,
		}}}

	case PropertyEqTerm:
		op, val := OpEquals, valueString(t.Value)
		if h, ok := t.Value.(HierarchyValue); ok && h.Op != Isa {
			op, val = hierarchyOp(h.Op), h.Code
		}
		return part{filters: []Filter{{Property: t.Property, Op: op, Value: val}}}

	case PropertyInTerm:
		// Expanded by translateInner; kept here so a direct call still
		// produces a usable filter.
		values := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			values = append(values, valueString(v))
		}
		return part{filters: []Filter{{Property: t.Property, Op: OpIn, Value: strings.Join(values, ",")}}}

	case PropertyRegexTerm:
		return part{filters: []Filter{{Property: t.Property, Op: OpRegex, Value: t.Pattern}}}

	case MembershipValueSetTerm:
		return part{valueSets: []string{t.URL}}

	case MembershipAliasTerm:
		if target, ok := aliases[t.Name].(ValueSetTarget); ok {
			return part{valueSets: []string{target.URL}}
		}
		return part{}

	case ExistsTerm:
		return part{filters: []Filter{{Property: t.Property, Op: OpExists, Value: "true"}}}
	}
	return part{}
}

func hierarchyOp(op HierarchyOp) FilterOp {
	if op == DescOnly {
		return OpDescendentOf
	}
	return OpIsA
}

func valueString(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return val.S
	case CodeValue:
		return val.Code
	case URIValue:
		return val.URI
	case HierarchyValue:
		return fmt.Sprintf("%s %s", val.Op, val.Code)
	}
	return ""
}

// resolveSystemAndVersion resolves a system reference through the alias
// table. A ValueSet alias contributes neither system nor version, and an
// unresolved alias stays empty.
func resolveSystemAndVersion(ref SystemRef, aliases map[string]AliasTarget) (system, version string) {
	if ref.URI != "" {
		return ref.URI, ""
	}
	switch target := aliases[ref.Alias].(type) {
	case SystemTarget:
		if target.System.URI != "" {
			return target.System.URI, target.Version
		}
		// Nested alias: resolve through, the outer version winning.
		system, nestedVersion := resolveSystemAndVersion(target.System, aliases)
		if target.Version != "" {
			return system, target.Version
		}
		return system, nestedVersion
	case ValueSetTarget:
		return "", ""
	}
	return "", ""
}

// resolveValueSetAliases replaces #alias references with their URLs.
// Unresolvable references are kept as written.
func resolveValueSetAliases(valueSets []string, aliases map[string]AliasTarget) []string {
	if len(valueSets) == 0 {
		return valueSets
	}
	out := make([]string, len(valueSets))
	for i, vs := range valueSets {
		out[i] = vs
		if name, ok := strings.CutPrefix(vs, "#"); ok {
			if target, isVS := aliases[name].(ValueSetTarget); isVS {
				out[i] = target.URL
			}
		}
	}
	return out
}

func concatConcepts(a, b []ConceptRef) []ConceptRef {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]ConceptRef, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func concatFilters(a, b []Filter) []Filter {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]Filter, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func concatStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
