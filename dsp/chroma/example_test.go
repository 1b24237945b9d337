package chroma_test

import (
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/chroma"
)

func ExampleFold() {
	pitch := make([]float64, 128)
	pitch[57] = 0.25 // A3
	pitch[69] = 0.5  // A4
	pitch[81] = 0.25 // A5

	out, err := chroma.Fold(pitch)
	if err != nil {
		panic(err)
	}

	fmt.Printf("class 9 (A): %.2f\n", out[9])

	// Output:
	// class 9 (A): 1.00
}
