// Package syntax parses and prints the textual form of science IR modules.
//
// The grammar is line-oriented:
//
//	module {
//	  %q13315 = constant !science.protein<Q13315>
//	  %r = science.phosphorylate %q13315, %p04637 at "S15" {context = #science.context<organism="human">} {evidence = #science.evidence<"9724731", "unknown", 0.95, "reach">} : (!science.protein<Q13315>, !science.protein<P04637>) -> !science.protein<P04637>
//	}
//
// Parsing is diagnostic-collecting: malformed lines are reported and
// skipped so one pass surfaces every problem. Printing is canonical -
// attribute keys in declaration order, NFC-normalized strings, stable float
// formatting - so Print is byte-stable and Parse(Print(m)) is structurally
// equal to m.
package syntax
