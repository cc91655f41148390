package ffq

// Start is a parsed query: the alias headers followed by the expression.
type Start struct {
	Headers []Header
	Expr    Expr
}

// Header is an @alias declaration binding a name to a system or ValueSet.
type Header struct {
	Name   string
	Target AliasTarget
}

// AliasTarget is what an alias points to: a code system (optionally
// versioned) or a ValueSet URL.
type AliasTarget interface{ aliasTarget() }

// SystemTarget is an alias aimed at a code system. Version is empty when
// the alias carries no |version suffix.
type SystemTarget struct {
	System  SystemRef
	Version string
}

// ValueSetTarget is an alias aimed at a ValueSet URL, written vs(url).
type ValueSetTarget struct {
	URL string
}

func (SystemTarget) aliasTarget()   {}
func (ValueSetTarget) aliasTarget() {}

// SystemRef names a code system either by URI or through an alias.
// Exactly one field is set.
type SystemRef struct {
	URI   string
	Alias string
}

// Expr is a node of the outer expression tree. Precedence from tightest
// to loosest: !, &, |, -.
type Expr interface{ expr() }

// MinusExpr is set difference: left minus right.
type MinusExpr struct{ Left, Right Expr }

// OrExpr is set union.
type OrExpr struct{ Left, Right Expr }

// AndExpr is set intersection.
type AndExpr struct{ Left, Right Expr }

// NotExpr is set complement.
type NotExpr struct{ Inner Expr }

// GroupExpr is a parenthesised subexpression.
type GroupExpr struct{ Inner Expr }

// ClauseExpr is a leaf clause: system[(|version)]: innerExpr.
type ClauseExpr struct {
	System  SystemRef
	Version string
	Inner   InnerExpr
}

func (MinusExpr) expr()  {}
func (OrExpr) expr()     {}
func (AndExpr) expr()    {}
func (NotExpr) expr()    {}
func (GroupExpr) expr()  {}
func (ClauseExpr) expr() {}

// InnerExpr mirrors Expr inside a clause, over Terms instead of clauses.
type InnerExpr interface{ innerExpr() }

type InnerMinus struct{ Left, Right InnerExpr }
type InnerOr struct{ Left, Right InnerExpr }
type InnerAnd struct{ Left, Right InnerExpr }
type InnerNot struct{ Inner InnerExpr }
type InnerGroup struct{ Inner InnerExpr }

// TermExpr wraps a Term as an InnerExpr leaf.
type TermExpr struct{ Term Term }

func (InnerMinus) innerExpr() {}
func (InnerOr) innerExpr()    {}
func (InnerAnd) innerExpr()   {}
func (InnerNot) innerExpr()   {}
func (InnerGroup) innerExpr() {}
func (TermExpr) innerExpr()   {}

// HierarchyOp selects a subsumption relation.
type HierarchyOp int

const (
	// DescOrSelf is <<: the code and all descendants.
	DescOrSelf HierarchyOp = iota
	// DescOnly is <: descendants only.
	DescOnly
	// Isa is the isa keyword; equivalent to <<.
	Isa
)

func (op HierarchyOp) String() string {
	switch op {
	case DescOrSelf:
		return "<<"
	case DescOnly:
		return "<"
	case Isa:
		return "isa"
	default:
		return "?"
	}
}

// Term is an atomic selector inside a clause.
type Term interface{ term() }

// HierarchyTerm is << code, < code, or isa code.
type HierarchyTerm struct {
	Op   HierarchyOp
	Code string
}

// PropertyEqTerm is prop = value.
type PropertyEqTerm struct {
	Property string
	Value    Value
}

// PropertyInTerm is prop in (v1, v2, ...).
type PropertyInTerm struct {
	Property string
	Values   []Value
}

// PropertyRegexTerm is prop ~ /pattern/; Pattern has the slashes removed.
type PropertyRegexTerm struct {
	Property string
	Pattern  string
}

// MembershipValueSetTerm is in vs(url).
type MembershipValueSetTerm struct {
	URL string
}

// MembershipAliasTerm is in #alias.
type MembershipAliasTerm struct {
	Name string
}

// ExistsTerm is has prop.
type ExistsTerm struct {
	Property string
}

func (HierarchyTerm) term()          {}
func (PropertyEqTerm) term()         {}
func (PropertyInTerm) term()         {}
func (PropertyRegexTerm) term()      {}
func (MembershipValueSetTerm) term() {}
func (MembershipAliasTerm) term()    {}
func (ExistsTerm) term()             {}

// Value is the right-hand side of a property comparison.
type Value interface{ value() }

// StringValue is a double-quoted string with escapes resolved.
type StringValue struct{ S string }

// CodeValue is a bare code token.
type CodeValue struct{ Code string }

// URIValue is an http/https/urn value.
type URIValue struct{ URI string }

// HierarchyValue is a hierarchy expression used as a value, e.g.
// associatedMorphology = << 49755003.
type HierarchyValue struct {
	Op   HierarchyOp
	Code string
}

func (StringValue) value()    {}
func (CodeValue) value()      {}
func (URIValue) value()       {}
func (HierarchyValue) value() {}
