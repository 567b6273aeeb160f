package automaton_test

import (
	"fmt"

	"github.com/coregx/acbridge/automaton"
)

// ExampleBuild demonstrates leftmost-longest matching.
func ExampleBuild() {
	patterns := [][]byte{[]byte("he"), []byte("she"), []byte("hers")}
	a, err := automaton.Build(patterns, automaton.DefaultConfig())
	if err != nil {
		panic(err)
	}

	for m := range a.FindIter([]byte("shers")) {
		fmt.Printf("pattern %d at [%d:%d]\n", m.Pattern, m.Start, m.End)
	}
	// Output: pattern 1 at [0:3]
}

// ExampleAutomaton_FindAll demonstrates ASCII case-insensitive matching.
func ExampleAutomaton_FindAll() {
	a, _ := automaton.NewBuilder(automaton.DefaultConfig()).
		AddPattern([]byte("ABC")).
		Build()

	fmt.Println(a.FindAll([]byte("xxabcxx AbC"), -1))
	// Output: [{0 2 5} {0 8 11}]
}
