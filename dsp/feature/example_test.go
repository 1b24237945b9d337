package feature_test

import (
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/feature"
)

func ExampleChain() {
	chain, err := feature.NewChain(feature.DefaultRegistry(), []feature.StepConfig{
		{Name: feature.StepCompression},
		{Name: feature.StepNormalization, Str: map[string]string{"mode": "l1"}},
	})
	if err != nil {
		panic(err)
	}

	buf, err := feature.NewBuffer([][]float64{{0.99, 9.99}}, 10)
	if err != nil {
		panic(err)
	}

	out, err := chain.Apply(buf)
	if err != nil {
		panic(err)
	}

	v := out.Vector(0)
	fmt.Printf("%.2f %.2f\n", v[0], v[1])

	// Output:
	// 0.40 0.60
}

func ExampleQuantization_Quantize() {
	q := feature.NewDefaultQuantization()

	fmt.Printf("%.1f %.1f %.1f\n", q.Quantize(0.01), q.Quantize(0.3), q.Quantize(0.9))

	// Output:
	// 0.0 0.6 1.0
}
