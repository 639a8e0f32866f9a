// Package statement builds xAPI statements for gameplay events and hands them to a
// statementq Controller.
//
// Verbs and objects come from a fixed catalog (VerbCompleted, ObjectLevel, ...) or
// from CustomVerb and CustomObject for vocabulary the catalog does not cover. A
// Builder carries the player, the session key and an optional default context:
//
//	b, err := statement.NewBuilder(statement.Player{Name: "gimli", Mail: "gimli@example.com"},
//		statement.WithSessionKey("A1B2C3"))
//	st, err := b.Build(statement.VerbCompleted, statement.ObjectLevel,
//		statement.Describe("mines-3", ""), statement.Extension("score", 500))
//	id, err := statement.Enqueue(ctx, controller, st)
package statement
