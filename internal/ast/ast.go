// Package ast defines the tagged tree produced by the Parser. Ownership is
// strictly tree-shaped: a Node's children are fields
// holding *Node (or slices of them); there are no back-pointers that could
// form a cycle other than the explicitly-documented forward Next sibling
// link on statement-level nodes.
package ast

import "github.com/akshatnamdeo/osfl/internal/token"

// Kind discriminates the tagged Node variants.
type Kind int

const (
	// Declarations.
	KindFrame Kind = iota
	KindVarDecl
	KindConstDecl
	KindFuncDecl
	KindClassDecl
	KindImportDecl

	// Statements.
	KindBlock
	KindIf
	KindWhile
	KindFor
	KindReturn
	KindTryCatch
	KindOnError
	KindExprStmt
	KindBreak
	KindContinue

	// Expressions.
	KindLiteral
	KindIdentifier
	KindBinary
	KindUnary
	KindCall
	KindIndex
	KindMember
	KindInterpolation
)

// Node is a single AST node. Only the fields relevant to Kind are
// meaningful; this mirrors a tagged union using a flat struct, which keeps
// the tree-walking Compiler free of type assertions for every node shape.
type Node struct {
	Kind     Kind
	Location token.SourceLocation

	// Declarations.
	Name       string          // Frame/VarDecl/ConstDecl/FuncDecl/ClassDecl name, Identifier name, Member name
	Params     []string        // FuncDecl parameter names
	Body       *Node           // FuncDecl/Frame/While/For/TryCatch/OnError body (a Block, except While/For: any statement)
	Members    []*Node         // ClassDecl members, Block statements (a Frame's declarations sit in its Body)
	Init       *Node           // VarDecl/ConstDecl/For initializer
	ImportPath string          // ImportDecl path

	// Statements.
	Cond       *Node // If/While/For condition
	Then       *Node // If then-branch
	Else       *Node // If else-branch (nil if absent)
	Post       *Node // For increment/post statement
	Catch      *Node // TryCatch catch block
	CatchName  string
	Expr       *Node // Return/ExprStmt expression
	Next       *Node // forward-only sibling link for linearized statement lists

	// Expressions.
	TokenKind token.Kind // Literal: tag of the originating token
	Operator  token.Kind // Binary/Unary operator
	Left      *Node      // Binary left, Index target, Member target
	Right     *Node      // Binary right
	Operand   *Node      // Unary operand
	Callee    *Node      // Call callee
	Args      []*Node    // Call arguments
	Index     *Node      // Index expression
	Parts     []*Node    // Interpolation parts (alternating String literal / expression Nodes)

	// Literal payload, shared shape with token.Value.
	IntValue    int64
	FloatValue  float64
	StringValue string
	BoolValue   bool
}

// NewLiteral builds a Literal node from a decoded token.Value.
func NewLiteral(loc token.SourceLocation, kind token.Kind, v token.Value) *Node {
	n := &Node{Kind: KindLiteral, Location: loc, TokenKind: kind}
	switch v.Kind {
	case token.IntValue:
		n.IntValue = v.Int
	case token.FloatValue:
		n.FloatValue = v.Flt
	case token.StringValue:
		n.StringValue = v.Str
	case token.BoolValue:
		n.BoolValue = v.Bool
	}
	return n
}

// Walk performs a post-order traversal of n and its children, calling visit
// exactly once per node. A nil n is a no-op.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	for _, c := range n.children() {
		Walk(c, visit)
	}
	visit(n)
}

func (n *Node) children() []*Node {
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	add(n.Body)
	add(n.Init)
	add(n.Cond)
	add(n.Then)
	add(n.Else)
	add(n.Post)
	add(n.Catch)
	add(n.Expr)
	add(n.Left)
	add(n.Right)
	add(n.Operand)
	add(n.Callee)
	add(n.Index)
	for _, m := range n.Members {
		add(m)
	}
	for _, a := range n.Args {
		add(a)
	}
	for _, p := range n.Parts {
		add(p)
	}
	// Next is a linearization convenience, not an owned child: walking it
	// here would visit statement lists twice when they are also reachable
	// via Members/Body. Callers that rely on Next walk it explicitly.
	return out
}
